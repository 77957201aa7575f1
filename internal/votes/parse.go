package votes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	tableTitle = iota
	tablePositive
	tableNegative
	tableAbstention
)

// the first cell of a result row is the political group, the second the names
const namesCell = 1

// a lone sentinel in a result table marks an empty placeholder row
const (
	sentinelPositive   = "+"
	sentinelNegative   = "-"
	sentinelAbstention = "0"
)

// matches "A-9-2023/2024" style and "A9-0001/2024" style document identifiers
var proposalIdRegex = regexp.MustCompile(`([A-Z]{1,2}-[A-Z0-9]{1,3}-[0-9]{4}/[0-9]{4})|([A-Z][0-9]-[0-9]{4}/[0-9]{4})`)

var errEmptyTitle = errors.New("empty title")

// ParseBlock reads a single vote block. The returned vote only carries names,
// Result is filled in by Tally.
func ParseBlock(block Block) (Vote, error) {
	titleTable, err := block.TableAt(tableTitle)
	if err != nil {
		return Vote{}, fmt.Errorf("title: %w", err)
	}
	title := titleTable.LabelText()
	if strings.TrimSpace(title) == "" {
		return Vote{}, errEmptyTitle
	}

	proposalId, ok := titleTable.LinkText()
	if !ok {
		proposalId = proposalIdRegex.FindString(title)
	}

	positive, err := parseNames(block, tablePositive, sentinelPositive)
	if err != nil {
		return Vote{}, fmt.Errorf("positive: %w", err)
	}
	negative, err := parseNames(block, tableNegative, sentinelNegative)
	if err != nil {
		return Vote{}, fmt.Errorf("negative: %w", err)
	}
	abstention, err := parseNames(block, tableAbstention, sentinelAbstention)
	if err != nil {
		return Vote{}, fmt.Errorf("abstention: %w", err)
	}

	return Vote{
		ProposalID: proposalId,
		Title:      title,
		Positive:   positive,
		Negative:   negative,
		Abstention: abstention,
	}, nil
}

func parseNames(block Block, index int, sentinel string) ([]string, error) {
	table, err := block.TableAt(index)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for row := 0; row < table.RowCount(); row++ {
		cell, err := table.CellText(row, namesCell)
		if err != nil {
			return nil, err
		}
		for _, name := range strings.Split(cell, ",") {
			name = strings.TrimSpace(name)
			if name == "" || name == sentinel {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

// ParseBlocks parses every block, skipping the ones that fail. The skipped
// blocks are returned as ParseErrors in block order.
func ParseBlocks(blocks []Block) ([]Vote, []ParseError) {
	var parsed []Vote
	var skipped []ParseError
	for i, block := range blocks {
		vote, err := ParseBlock(block)
		if err != nil {
			skipped = append(skipped, ParseError{Index: i, Err: err})
			continue
		}
		parsed = append(parsed, vote)
	}
	return parsed, skipped
}
