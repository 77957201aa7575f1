package votes

import (
	"fmt"
	"strings"
)

type groupRow struct {
	group string
	names string
}

type blockFixture struct {
	title      string
	link       string
	positive   []groupRow
	negative   []groupRow
	abstention []groupRow
	// number of result tables rendered, defaults to all three
	resultTables int
}

func renderRows(rows []groupRow) string {
	var out strings.Builder
	out.WriteString(`<table class="doc_box_result">`)
	for _, r := range rows {
		fmt.Fprintf(&out, `<tr><td class="group">%s</td><td>%s</td></tr>`, r.group, r.names)
	}
	out.WriteString(`</table>`)
	return out.String()
}

func (b blockFixture) render() string {
	var out strings.Builder
	out.WriteString(`<table class="doc_box_header"><tr><td>`)

	out.WriteString(`<table class="title"><tr><td>`)
	fmt.Fprintf(&out, `<span class="bold">%s</span>`, b.title)
	if b.link != "" {
		fmt.Fprintf(&out, ` <span><a href="https://www.europarl.europa.eu/doceo/document/%s_EN.html">%s</a></span>`, b.link, b.link)
	}
	out.WriteString(`</td></tr></table>`)

	tables := b.resultTables
	if tables == 0 {
		tables = 3
	}
	lists := [][]groupRow{b.positive, b.negative, b.abstention}
	for i := 0; i < tables; i++ {
		out.WriteString(renderRows(lists[i]))
	}

	out.WriteString(`</td></tr></table>`)
	return out.String()
}

func renderDocument(blocks ...blockFixture) string {
	var out strings.Builder
	out.WriteString(`<!DOCTYPE html><html><head><title>RCV</title></head><body>`)
	out.WriteString(`<table class="doc_box_header_intro"><tr><td>Results of roll-call votes</td></tr></table>`)
	for _, b := range blocks {
		out.WriteString(b.render())
	}
	out.WriteString(`</body></html>`)
	return out.String()
}

var testRoster = []Member{
	{ID: 1, FullName: "Alice MARTIN"},
	{ID: 2, FullName: "Bob DUPONT"},
	{ID: 3, FullName: "Carla ROSSI"},
	{ID: 4, FullName: "Dieter MÜLLER"},
	{ID: 5, FullName: "Eva NOVÁK"},
	{ID: 6, FullName: "Frank WEBER"},
}

func sampleBlock(title, link string) blockFixture {
	return blockFixture{
		title: title,
		link:  link,
		positive: []groupRow{
			{group: "EPP", names: "Martin, Dupont"},
			{group: "S&amp;D", names: "Rossi"},
		},
		negative: []groupRow{
			{group: "ECR", names: "Muller"},
		},
		abstention: []groupRow{
			{group: "Renew", names: "Novak"},
		},
	}
}

// four blocks, the first two on A9-0001/2024 and the last two on A9-0002/2024
func sampleDocument() string {
	return renderDocument(
		sampleBlock("Report on the digital single market", "A9-0001/2024"),
		sampleBlock("Report on the digital single market - Am 1", "A9-0001/2024"),
		sampleBlock("Motion on energy prices", "A9-0002/2024"),
		sampleBlock("Motion on energy prices - Am 4", "A9-0002/2024"),
	)
}
