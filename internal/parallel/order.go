package parallel

// RowOrder returns the order in which the rows [0, height) are scheduled.
//
// The middle third comes first, then the top third from its lower edge
// upwards, then the bottom third downwards. Every row appears exactly once.
// The order only affects how a progressive render looks while it runs.
func RowOrder(height int) []int {
	if height <= 0 {
		return nil
	}

	lower := height / 3
	upper := height * 2 / 3

	order := make([]int, 0, height)
	for y := lower; y < upper; y++ {
		order = append(order, y)
	}
	for y := lower - 1; y >= 0; y-- {
		order = append(order, y)
	}
	for y := upper; y < height; y++ {
		order = append(order, y)
	}
	return order
}
