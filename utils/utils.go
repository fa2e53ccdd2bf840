package utils

import (
	"bufio"
	"io"

	"github.com/twmb/murmur3"
)

// HashStrings hashes the sequence as a whole. Items are separated by a zero byte so ["ab","c"] and ["a","bc"] differ.
func HashStrings(ss ...string) uint64 {
	hash := murmur3.New64()
	for i, s := range ss {
		if i > 0 {
			if _, err := hash.Write([]byte{0}); err != nil {
				panic(err)
			}
		}
		if _, err := hash.Write([]byte(s)); err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// NewLineScanner returns a line scanner that accepts lines up to maxLine bytes.
func NewLineScanner(r io.Reader, maxLine int) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	return scanner
}
