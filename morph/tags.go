package morph

import "strings"

const (
	NN  = "NN"
	PRP = "PRP"
	WP  = "WP"
	VB  = "VB"
	JJ  = "JJ"
	RB  = "RB"
	WRB = "WRB"
	CD  = "CD"
)

func IsNoun(tag string) bool {
	return StartsWithAny(tag, NN) || AnyOf(tag, PRP, WP)
}

func IsVerb(tag string) bool {
	return StartsWithAny(tag, VB)
}

func IsAdjective(tag string) bool {
	return StartsWithAny(tag, JJ)
}

func IsAdverb(tag string) bool {
	return StartsWithAny(tag, RB) || AnyOf(tag, WRB)
}

func AnyOf(s string, values ...string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

func StartsWithAny(s string, values ...string) bool {
	for _, v := range values {
		if strings.HasPrefix(s, v) {
			return true
		}
	}
	return false
}
