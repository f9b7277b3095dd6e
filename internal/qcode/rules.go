package qcode

import (
	"github.com/nconklindev/qtranslate/internal/lang"
)

// Pair is an ordered source/target language pair.
type Pair struct {
	From lang.Code
	To   lang.Code
}

// Rewrite replaces family From with family To.
type Rewrite struct {
	From Family
	To   Family
}

// Rules lists the only language pairs whose question codes change family.
// English instruments number questions Q, the Albanian, Serbian and
// Macedonian ones use P. Pairs missing here keep the code as it is; that
// includes mk->en, sr->en, sq->sr and every identity pair.
var Rules = map[Pair]Rewrite{
	{From: lang.English, To: lang.Albanian}:   {From: FamilyQ, To: FamilyP},
	{From: lang.English, To: lang.Serbian}:    {From: FamilyQ, To: FamilyP},
	{From: lang.English, To: lang.Macedonian}: {From: FamilyQ, To: FamilyP},
	{From: lang.Albanian, To: lang.English}:   {From: FamilyP, To: FamilyQ},
}

// Lookup returns the rewrite declared for from->to.
func Lookup(from, to lang.Code) (Rewrite, bool) {
	r, ok := Rules[Pair{From: from, To: to}]
	return r, ok
}

// RemapFamily rewrites the family letter of code for the from->to pair.
// Codes of the other family, empty codes and undeclared pairs are returned
// unchanged. Only the family letter is touched, never the suffix.
func RemapFamily(code string, from, to lang.Code) string {
	if code == "" {
		return code
	}
	r, ok := Lookup(from, to)
	if !ok || Family(code[0]) != r.From {
		return code
	}
	return r.To.String() + code[1:]
}
