package workbook

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Attr is one row attribute in output order.
type Attr struct {
	Name  string
	Value string
}

// Row is one non-blank data row.
type Row struct {
	// Index is the 0-based position among all data rows, blank ones included.
	Index int
	Attrs []Attr
}

// Get returns the value of the named attribute.
func (r Row) Get(name string) (string, bool) {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// set overwrites an existing attribute in place or appends a new one.
func (r *Row) set(name, value string) {
	for i := range r.Attrs {
		if r.Attrs[i].Name == name {
			r.Attrs[i].Value = value
			return
		}
	}
	r.Attrs = append(r.Attrs, Attr{Name: name, Value: value})
}

// Document is the ListObject payload of one CPD workbook.
type Document struct {
	CPDName string
	CPDYear int
	Rows    []Row
}

// XML serializes the document:
//
//	<ListObject FirstRow="2" cpdName=".." cpdYear=".."><row Index="0" CPDName=".." .../>...</ListObject>
func (d *Document) XML() (string, error) {
	var sb strings.Builder
	enc := xml.NewEncoder(&sb)

	root := xml.StartElement{
		Name: xml.Name{Local: "ListObject"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "FirstRow"}, Value: "2"},
			{Name: xml.Name{Local: "cpdName"}, Value: d.CPDName},
			{Name: xml.Name{Local: "cpdYear"}, Value: strconv.Itoa(d.CPDYear)},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return "", err
	}

	for _, row := range d.Rows {
		attrs := make([]xml.Attr, 0, len(row.Attrs)+1)
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "Index"}, Value: strconv.Itoa(row.Index)})
		for _, a := range row.Attrs {
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
		}
		start := xml.StartElement{Name: xml.Name{Local: "row"}, Attr: attrs}
		if err := enc.EncodeToken(start); err != nil {
			return "", err
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return "", err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
