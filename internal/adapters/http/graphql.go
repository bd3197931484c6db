package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the routing services.
// Objects resolve from the domain types through their json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ServerStatus",
		Fields: graphql.Fields{
			"state": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.ServerStatus).State), nil
				},
			},
			"state_text":    &graphql.Field{Type: graphql.String},
			"db_options":    &graphql.Field{Type: graphql.String},
			"can_configure": &graphql.Field{Type: graphql.Boolean},
			"can_query":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	optionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PluginOption",
		Fields: graphql.Fields{
			"type": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch o := p.Source.(type) {
					case domain.PluginOption:
						return int(o.Type), nil
					case *domain.PluginOption:
						return int(o.Type), nil
					}
					return nil, nil
				},
			},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"value":       &graphql.Field{Type: graphql.String},
		},
	})

	namedType := func(name string) *graphql.Object {
		return graphql.NewObject(graphql.ObjectConfig{
			Name: name,
			Fields: graphql.Fields{
				"id":   &graphql.Field{Type: graphql.Int},
				"name": &graphql.Field{Type: graphql.String},
			},
		})
	}

	constantsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Constants",
		Fields: graphql.Fields{
			"transport_types": &graphql.Field{Type: graphql.NewList(namedType("TransportType"))},
			"networks":        &graphql.Field{Type: graphql.NewList(namedType("Network"))},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	rowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoadmapRow",
		Fields: graphql.Fields{
			"kind":        &graphql.Field{Type: graphql.String},
			"icon":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"costs":       &graphql.Field{Type: graphql.String},
		},
	})

	metricType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Metric",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.String},
		},
	})

	itineraryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Itinerary",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"plugin": &graphql.Field{Type: graphql.String},
			"length": &graphql.Field{Type: graphql.Float},
			"created_at": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Itinerary).CreatedAt, nil
				},
			},
			"roadmap": &graphql.Field{
				Type: graphql.NewList(rowType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Itinerary).Result.Roadmap, nil
				},
			},
			"metrics": &graphql.Field{
				Type: graphql.NewList(metricType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Itinerary).Result.Metrics, nil
				},
			},
			"overview_path": &graphql.Field{
				Type: graphql.NewList(pointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Itinerary).Result.OverviewPath, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"state": &graphql.Field{
				Type:        statusType,
				Description: "Current backend state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.State(p.Context)
				},
			},
			"plugins": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Routing plugins loaded by the backend",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.Plugins(p.Context)
				},
			},
			"pluginOptions": &graphql.Field{
				Type:        graphql.NewList(optionType),
				Description: "Options of a routing plugin with their current values",
				Args: graphql.FieldConfigArgument{
					"plugin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.PluginOptions(p.Context, p.Args["plugin"].(string))
				},
			},
			"constants": &graphql.Field{
				Type:        constantsType,
				Description: "Transport types and networks of the loaded graph",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.Constants(p.Context)
				},
			},
			"itinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "A stored itinerary",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					it, err := deps.Itineraries.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return *it, nil
				},
			},
			"itineraries": &graphql.Field{
				Type:        graphql.NewList(itineraryType),
				Description: "Stored itineraries, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, _, err := deps.Itineraries.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return items, err
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"setPluginOption": &graphql.Field{
				Type:        optionType,
				Description: "Set one plugin option",
				Args: graphql.FieldConfigArgument{
					"plugin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"value":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.SetPluginOption(p.Context,
						p.Args["plugin"].(string), p.Args["name"].(string), p.Args["value"].(string))
				},
			},
			"buildGraph": &graphql.Field{
				Type:        statusType,
				Description: "Connect the backend to a database and build its graph",
				Args: graphql.FieldConfigArgument{
					"db_options": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Builds.Build(p.Context, p.Args["db_options"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
