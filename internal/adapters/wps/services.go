package wps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

var _ ports.RoutingBackend = (*Client)(nil)

// Process identifiers exposed by the Tempus WPS server.
const (
	ProcessState              = "state"
	ProcessPluginList         = "plugin_list"
	ProcessOptionDescriptions = "get_option_descriptions"
	ProcessGetOptions         = "get_options"
	ProcessSetOptions         = "set_options"
	ProcessConstantList       = "constant_list"
	ProcessConnect            = "connect"
	ProcessPreBuild           = "pre_build"
	ProcessBuild              = "build"
	ProcessPreProcess         = "pre_process"
	ProcessProcess            = "process"
	ProcessResult             = "result"
	ProcessGetMetrics         = "get_metrics"
)

func pluginInput(plugin string) Input {
	return Input{
		Identifier: "plugin",
		Value:      roadmap.Node{Tag: "plugin", Attrs: []roadmap.Attr{{Name: "name", Value: plugin}}},
	}
}

// State reports the backend lifecycle state. A state output that is not an
// integer yields StateUnknown.
func (c *Client) State(ctx context.Context) (domain.ServerStatus, error) {
	out, err := c.Execute(ctx, ProcessState)
	if err != nil {
		return domain.NewServerStatus(domain.StateUnknown, ""), err
	}
	state := domain.StateUnknown
	if n, ok := out["state"]; ok {
		if v, err := strconv.Atoi(n.Text); err == nil {
			state = domain.BackendState(v)
		}
	}
	return domain.NewServerStatus(state, out["db_options"].Text), nil
}

func (c *Client) Plugins(ctx context.Context) ([]string, error) {
	out, err := c.Execute(ctx, ProcessPluginList)
	if err != nil {
		return nil, err
	}
	list, ok := out["plugins"]
	if !ok {
		return nil, missingOutput(ProcessPluginList, "plugins")
	}
	names := make([]string, 0, len(list.Children))
	for _, p := range list.Children {
		name, _ := p.Attr("name")
		names = append(names, name)
	}
	return names, nil
}

func (c *Client) OptionDescriptions(ctx context.Context, plugin string) ([]domain.PluginOption, error) {
	out, err := c.Execute(ctx, ProcessOptionDescriptions, pluginInput(plugin))
	if err != nil {
		return nil, err
	}
	list, ok := out["options"]
	if !ok {
		return nil, missingOutput(ProcessOptionDescriptions, "options")
	}
	opts := make([]domain.PluginOption, 0, len(list.Children))
	for _, o := range list.Children {
		var opt domain.PluginOption
		opt.Name, _ = o.Attr("name")
		opt.Description, _ = o.Attr("description")
		raw, _ := o.Attr("type")
		t, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ProtocolError{Service: ProcessOptionDescriptions, Err: fmt.Errorf("option %s: type %q", opt.Name, raw)}
		}
		opt.Type = domain.OptionType(t)
		opts = append(opts, opt)
	}
	return opts, nil
}

func (c *Client) Options(ctx context.Context, plugin string) (map[string]string, error) {
	out, err := c.Execute(ctx, ProcessGetOptions, pluginInput(plugin))
	if err != nil {
		return nil, err
	}
	list, ok := out["options"]
	if !ok {
		return nil, missingOutput(ProcessGetOptions, "options")
	}
	values := make(map[string]string, len(list.Children))
	for _, o := range list.Children {
		name, _ := o.Attr("name")
		values[name], _ = o.Attr("value")
	}
	return values, nil
}

func (c *Client) SetOption(ctx context.Context, plugin, name, value string) error {
	options := roadmap.Node{Tag: "options", Children: []roadmap.Node{{
		Tag:   "option",
		Attrs: []roadmap.Attr{{Name: "name", Value: name}, {Name: "value", Value: value}},
	}}}
	_, err := c.Execute(ctx, ProcessSetOptions, pluginInput(plugin), Input{Identifier: "options", Value: options})
	return err
}

func (c *Client) Constants(ctx context.Context) (domain.Constants, error) {
	out, err := c.Execute(ctx, ProcessConstantList)
	if err != nil {
		return domain.Constants{}, err
	}

	var consts domain.Constants
	for _, t := range out["transport_types"].Children {
		raw, _ := t.Attr("id")
		id, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Constants{}, &ProtocolError{Service: ProcessConstantList, Err: fmt.Errorf("transport type id %q", raw)}
		}
		name, _ := t.Attr("name")
		consts.TransportTypes = append(consts.TransportTypes, domain.TransportType{ID: id, Name: name})
	}
	for _, n := range out["transport_networks"].Children {
		raw, _ := n.Attr("id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Constants{}, &ProtocolError{Service: ProcessConstantList, Err: fmt.Errorf("network id %q", raw)}
		}
		name, _ := n.Attr("name")
		consts.Networks = append(consts.Networks, domain.Network{ID: id, Name: name})
	}
	return consts, nil
}

func (c *Client) Connect(ctx context.Context, dbOptions string) error {
	_, err := c.Execute(ctx, ProcessConnect, Input{Identifier: "db_options", Value: roadmap.Leaf("db_options", dbOptions)})
	return err
}

func (c *Client) PreBuild(ctx context.Context) error {
	_, err := c.Execute(ctx, ProcessPreBuild)
	return err
}

func (c *Client) Build(ctx context.Context) error {
	_, err := c.Execute(ctx, ProcessBuild)
	return err
}

func (c *Client) PreProcess(ctx context.Context, plugin string, req roadmap.RequestDocument) error {
	_, err := c.Execute(ctx, ProcessPreProcess, pluginInput(plugin), Input{Identifier: "request", Value: req.Node()})
	return err
}

func (c *Client) Process(ctx context.Context, plugin string) error {
	_, err := c.Execute(ctx, ProcessProcess, pluginInput(plugin))
	return err
}

// Result returns the children of the `result` output in document order.
func (c *Client) Result(ctx context.Context, plugin string) (roadmap.ResultDocument, error) {
	out, err := c.Execute(ctx, ProcessResult, pluginInput(plugin))
	if err != nil {
		return nil, err
	}
	res, ok := out["result"]
	if !ok {
		return nil, missingOutput(ProcessResult, "result")
	}
	return roadmap.ResultDocument(res.Children), nil
}

func (c *Client) Metrics(ctx context.Context, plugin string) ([]domain.Metric, error) {
	out, err := c.Execute(ctx, ProcessGetMetrics, pluginInput(plugin))
	if err != nil {
		return nil, err
	}
	list, ok := out["metrics"]
	if !ok {
		return nil, missingOutput(ProcessGetMetrics, "metrics")
	}
	metrics := make([]domain.Metric, 0, len(list.Children))
	for _, m := range list.Children {
		var metric domain.Metric
		metric.Name, _ = m.Attr("name")
		metric.Value, _ = m.Attr("value")
		metrics = append(metrics, metric)
	}
	return metrics, nil
}
