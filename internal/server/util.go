package server

import (
	"os"
	"strconv"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
