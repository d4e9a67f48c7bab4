package procurement

// Aggregate merges candidates sharing a product into one line.
// The first candidate of each product is the representative and output keeps
// first-appearance order. Candidates of one product that disagree on
// supplier or currency fail the whole batch.
func Aggregate(candidates []LineCandidate) ([]AggregatedLine, error) {
	index := make(map[string]int, len(candidates))
	lines := make([]AggregatedLine, 0, len(candidates))

	for _, c := range candidates {
		key := c.ProductID.String()
		pos, seen := index[key]
		if !seen {
			index[key] = len(lines)
			lines = append(lines, AggregatedLine{LineCandidate: c, SourceCount: 1})
			continue
		}
		rep := &lines[pos]
		if rep.SupplierID != c.SupplierID || rep.Currency != c.Currency {
			return nil, NewInconsistentAssignmentError(c.ProductCode)
		}
		rep.Quantity = rep.Quantity.Add(c.Quantity)
		rep.SourceCount++
	}
	return lines, nil
}

// Partition groups lines by (supplier, currency) in first-seen group order
func Partition(lines []AggregatedLine) []OrderGroup {
	index := make(map[PartitionKey]int)
	groups := make([]OrderGroup, 0)

	for _, line := range lines {
		key := line.Key()
		pos, seen := index[key]
		if !seen {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, OrderGroup{
				SupplierID:   line.SupplierID,
				SupplierName: line.SupplierName,
				Currency:     line.Currency,
			})
		}
		groups[pos].Lines = append(groups[pos].Lines, line)
	}
	return groups
}
