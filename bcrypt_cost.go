//go:build !race

package todo

func passwordHashCost() int {
	return 14
}
