package wps

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

const (
	nsWPS = "http://www.opengis.net/wps/1.0.0"
	nsOWS = "http://www.opengis.net/ows/1.1"
)

// Input is one named complex-data input of an Execute request.
type Input struct {
	Identifier string
	Value      roadmap.Node
}

// Outputs maps an output identifier to the root element of its complex data.
type Outputs map[string]roadmap.Node

// encodeExecute writes a WPS 1.0.0 Execute request for the given process.
func encodeExecute(w io.Writer, process string, inputs []Input) error {
	enc := xml.NewEncoder(w)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	root := xml.StartElement{
		Name: xml.Name{Local: "wps:Execute"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:wps"}, Value: nsWPS},
			{Name: xml.Name{Local: "xmlns:ows"}, Value: nsOWS},
			{Name: xml.Name{Local: "service"}, Value: "WPS"},
			{Name: xml.Name{Local: "version"}, Value: "1.0.0"},
		},
	}
	tokens := []xml.Token{root}
	tokens = append(tokens, textElement("ows:Identifier", process)...)
	tokens = append(tokens, xml.StartElement{Name: xml.Name{Local: "wps:DataInputs"}})
	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}

	for _, in := range inputs {
		if err := encodeInput(enc, in); err != nil {
			return fmt.Errorf("input %s: %w", in.Identifier, err)
		}
	}

	for _, tok := range []xml.Token{
		xml.EndElement{Name: xml.Name{Local: "wps:DataInputs"}},
		root.End(),
	} {
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}
	return enc.Flush()
}

func encodeInput(enc *xml.Encoder, in Input) error {
	input := xml.StartElement{Name: xml.Name{Local: "wps:Input"}}
	data := xml.StartElement{Name: xml.Name{Local: "wps:Data"}}
	complexData := xml.StartElement{
		Name: xml.Name{Local: "wps:ComplexData"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "mimeType"}, Value: "text/xml"},
			{Name: xml.Name{Local: "encoding"}, Value: "UTF-8"},
		},
	}

	head := []xml.Token{input}
	head = append(head, textElement("ows:Identifier", in.Identifier)...)
	head = append(head, data, complexData)
	for _, tok := range head {
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}
	if err := encodeNode(enc, in.Value); err != nil {
		return err
	}
	for _, tok := range []xml.Token{complexData.End(), data.End(), input.End()} {
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}
	return nil
}

func textElement(name, text string) []xml.Token {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	return []xml.Token{start, xml.CharData(text), start.End()}
}

func encodeNode(enc *xml.Encoder, n roadmap.Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Tag}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// parseDocument reads any XML document into a node tree. Namespace prefixes
// are dropped from tags and attribute names; xmlns declarations are skipped.
func parseDocument(body []byte) (roadmap.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return roadmap.Node{}, errors.New("empty document")
			}
			return roadmap.Node{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseElement(dec, start)
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (roadmap.Node, error) {
	n := roadmap.Node{Tag: start.Name.Local}
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		n.Attrs = append(n.Attrs, roadmap.Attr{Name: a.Name.Local, Value: a.Value})
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return roadmap.Node{}, fmt.Errorf("element %s: %w", n.Tag, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return roadmap.Node{}, err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.Text = strings.TrimSpace(text.String())
			return n, nil
		}
	}
}

// decodeExecuteResponse extracts the outputs of an ExecuteResponse, or the
// exception of an ExceptionReport.
func decodeExecuteResponse(process string, body []byte) (Outputs, error) {
	root, err := parseDocument(body)
	if err != nil {
		return nil, &ProtocolError{Service: process, Err: err}
	}

	switch root.Tag {
	case "ExceptionReport":
		return nil, exceptionFrom(process, root)
	case "ExecuteResponse":
	default:
		return nil, &ProtocolError{Service: process, Err: fmt.Errorf("unexpected root element %q", root.Tag)}
	}

	outputs := Outputs{}
	processOutputs, ok := root.Child("ProcessOutputs")
	if !ok {
		// services without outputs may omit the element entirely
		return outputs, nil
	}
	for _, out := range processOutputs.ChildrenByTag("Output") {
		id, ok := out.Child("Identifier")
		if !ok {
			return nil, &ProtocolError{Service: process, Err: errors.New("output without identifier")}
		}
		data, _ := out.Child("Data")
		complexData, _ := data.Child("ComplexData")
		if len(complexData.Children) == 0 {
			outputs[id.Text] = roadmap.Leaf(id.Text, complexData.Text)
			continue
		}
		outputs[id.Text] = complexData.Children[0]
	}
	return outputs, nil
}

func exceptionFrom(process string, report roadmap.Node) *ExceptionError {
	e := &ExceptionError{Service: process}
	exc, ok := report.Child("Exception")
	if !ok {
		return e
	}
	e.Code, _ = exc.Attr("exceptionCode")
	if txt, ok := exc.Child("ExceptionText"); ok {
		e.Text = txt.Text
	}
	return e
}
