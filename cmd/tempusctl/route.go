package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// pointList collects repeated -via/-to "x,y" flags.
type pointList []domain.Coordinate

func (p *pointList) String() string { return fmt.Sprint(*p) }

func (p *pointList) Set(s string) error {
	c, err := parseCoordinate(s)
	if err != nil {
		return err
	}
	*p = append(*p, c)
	return nil
}

func parseCoordinate(s string) (domain.Coordinate, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return domain.Coordinate{X: x, Y: y}, nil
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseRouteFlags builds a query from the route subcommand flags. Every -to
// and -via adds a step in order; -depart and -arrive set the departure
// constraint.
func parseRouteFlags(args []string) (domain.ItineraryQuery, error) {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	var (
		from     = fs.String("from", "", "origin x,y")
		steps    pointList
		criteria = fs.String("criteria", "1", "optimizing criteria, comma separated")
		types    = fs.String("transport-types", "", "transport type ids, comma separated (default all)")
		networks = fs.String("networks", "", "network ids, comma separated (default all)")
		depart   = fs.String("depart", "", "depart after YYYY-MM-DDThh:mm:ss")
		arrive   = fs.String("arrive", "", "arrive before YYYY-MM-DDThh:mm:ss")
		parking  = fs.String("parking", "", "private parking x,y")
	)
	fs.Var(&steps, "to", "destination x,y (repeatable)")
	fs.Var(&steps, "via", "alias of -to")
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TEMPUS_ROUTE")); err != nil {
		return domain.ItineraryQuery{}, err
	}

	var q domain.ItineraryQuery
	if *from == "" {
		return q, fmt.Errorf("-from is required")
	}
	origin, err := parseCoordinate(*from)
	if err != nil {
		return q, err
	}
	q.Origin = origin
	for _, s := range steps {
		q.Steps = append(q.Steps, domain.RouteStep{Destination: s})
	}

	switch {
	case *depart != "" && *arrive != "":
		return q, fmt.Errorf("-depart and -arrive are exclusive")
	case *depart != "":
		q.DepartureConstraint = domain.Constraint{Kind: domain.ConstraintDepartAfter, DateTime: *depart}
	case *arrive != "":
		q.DepartureConstraint = domain.Constraint{Kind: domain.ConstraintArriveBefore, DateTime: *arrive}
	}

	if q.Criteria, err = parseInts(*criteria); err != nil {
		return q, fmt.Errorf("criteria %w", err)
	}
	if q.TransportTypes, err = parseInts(*types); err != nil {
		return q, fmt.Errorf("transport types %w", err)
	}
	ids, err := parseInts(*networks)
	if err != nil {
		return q, fmt.Errorf("networks %w", err)
	}
	for _, id := range ids {
		q.Networks = append(q.Networks, int64(id))
	}
	if *parking != "" {
		p, err := parseCoordinate(*parking)
		if err != nil {
			return q, err
		}
		q.Parking = &p
	}
	return q, nil
}
