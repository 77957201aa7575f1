package votes

import (
	"github.com/ABCurado/eu-parliment-votes-sdk/pkg/htmlutil"
)

// blockSelector matches the container of a single vote in the RCV document.
const blockSelector = "table.doc_box_header"

// Table is the accessor the parser needs over one table of a vote block.
type Table interface {
	// LabelText concatenates every inline label (span) of the table.
	LabelText() string
	// LinkText returns the text of the first hyperlink of the table.
	LinkText() (string, bool)
	RowCount() int
	CellText(row, cell int) (string, error)
}

// Block is a single vote as rendered in the source document: a title table at
// index 0 followed by the positive, negative and abstention tables.
type Block interface {
	TableAt(index int) (Table, error)
}

type htmlBlock struct {
	fragment htmlutil.Fragment
}

func (b htmlBlock) TableAt(index int) (Table, error) {
	table, err := b.fragment.TableAt(index)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Extract returns every vote block of an RCV document in document order,
// empty or malformed input yields no blocks.
func Extract(html string) []Block {
	fragments := htmlutil.Fragments(html, blockSelector)
	blocks := make([]Block, len(fragments))
	for i, f := range fragments {
		blocks[i] = htmlBlock{fragment: f}
	}
	return blocks
}
