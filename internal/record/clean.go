package record

import "strings"

// Unknown replaces an absent head_type or tail_type during cleaning.
const Unknown = "Unknown"

// Clean drops records missing head, relation or tail, fills absent types with
// Unknown, reduces every field to its text, and removes exact duplicates
// keeping the first occurrence. The result may be empty.
func Clean(edges []Record) []Record {
	cleaned := make([]Record, 0, len(edges))
	seen := make(map[Key]bool, len(edges))

	for _, r := range edges {
		if r.Head.Missing() || r.Relation.Missing() || r.Tail.Missing() {
			continue
		}

		c := Record{
			Head:     Text(r.Head.Text),
			HeadType: orUnknown(r.HeadType),
			Relation: Text(r.Relation.Text),
			Tail:     Text(r.Tail.Text),
			TailType: orUnknown(r.TailType),
		}

		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, c)
	}

	return cleaned
}

func orUnknown(f Field) Field {
	if f.Missing() {
		return Text(Unknown)
	}
	return Text(f.Text)
}

// Normalize lowercases and trims head_type, tail_type and relation. Head and
// tail are left byte-for-byte unchanged.
func Normalize(edges []Record) []Record {
	normalized := make([]Record, len(edges))
	for i, r := range edges {
		r.HeadType = fold(r.HeadType)
		r.TailType = fold(r.TailType)
		r.Relation = fold(r.Relation)
		normalized[i] = r
	}
	return normalized
}

func fold(f Field) Field {
	if f.Missing() {
		return f
	}
	f.Text = strings.ToLower(strings.TrimSpace(f.Text))
	return f
}
