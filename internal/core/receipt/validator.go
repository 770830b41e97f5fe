package receipt

import "strings"

// Validate reports whether a candidate carries the minimum fields needed to
// accept it: a store name, a positive total and a date. The invoice number is
// optional.
func Validate(c *ParsedReceipt) bool {
	return len(Problems(c)) == 0
}

// Problems lists the required fields a candidate is missing.
func Problems(c *ParsedReceipt) []string {
	if c == nil {
		return []string{"no candidate"}
	}
	var problems []string
	if strings.TrimSpace(c.StoreName) == "" {
		problems = append(problems, "store name missing")
	}
	if c.TotalAmount <= 0 {
		problems = append(problems, "total amount missing")
	}
	if c.Date == nil || strings.TrimSpace(*c.Date) == "" {
		problems = append(problems, "date missing")
	}
	return problems
}
