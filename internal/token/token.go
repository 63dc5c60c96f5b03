// Package token defines the token kinds produced by the LAVA scanner.
package token

import (
	"fmt"

	"lava-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // gyatt, x, my_var
	NUMBER // 42, 3.14, -7
	STRING // "hello"

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	BANG   // !
	LT     // <
	GT     // >
	EQ     // ==
	NEQ    // !=
	LTE    // <=
	GTE    // >=

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	DOT      // .

	// Keywords
	KW_COOK
	KW_SIGMA
	KW_TWEET
	KW_SQUAD
	KW_HAWK_TUAH
	KW_YAP
	KW_TILL
	KW_TO
	KW_FLEX
	KW_RIZZ_CHECK
	KW_NAH_FAM
	KW_YEET
	KW_SKIBIDI
	KW_SUS
	KW_PANIK
	KW_SLAY
	KW_CAP
	KW_NVM
	KW_DELULU
	KW_FRFR
	KW_MAYBE
	KW_NAH
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	BANG:   "!",
	LT:     "<",
	GT:     ">",
	EQ:     "==",
	NEQ:    "!=",
	LTE:    "<=",
	GTE:    ">=",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACE:   "{",
	RBRACE:   "}",
	LBRACKET: "[",
	RBRACKET: "]",
	COMMA:    ",",
	DOT:      ".",

	KW_COOK:       "cook",
	KW_SIGMA:      "sigma",
	KW_TWEET:      "tweet",
	KW_SQUAD:      "squad",
	KW_HAWK_TUAH:  "hawk_tuah",
	KW_YAP:        "yap",
	KW_TILL:       "till",
	KW_TO:         "to",
	KW_FLEX:       "flex",
	KW_RIZZ_CHECK: "rizz_check",
	KW_NAH_FAM:    "nah_fam",
	KW_YEET:       "yeet",
	KW_SKIBIDI:    "skibidi",
	KW_SUS:        "sus",
	KW_PANIK:      "panik",
	KW_SLAY:       "slay",
	KW_CAP:        "cap",
	KW_NVM:        "nvm",
	KW_DELULU:     "delulu",
	KW_FRFR:       "frfr",
	KW_MAYBE:      "maybe",
	KW_NAH:        "nah",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsOperator reports whether k may join two operands in a comparison chain.
func (k Kind) IsOperator() bool {
	return k >= PLUS && k <= GTE
}

// EndsOperand reports whether a token of kind k can be the last token of an
// operand. The scanner uses it to decide whether "-5" is a signed literal.
func (k Kind) EndsOperand() bool {
	switch k {
	case IDENT, NUMBER, STRING, RPAREN, RBRACKET,
		KW_SLAY, KW_CAP, KW_NVM, KW_DELULU:
		return true
	}
	return false
}

var keywords = map[string]Kind{
	"cook":       KW_COOK,
	"sigma":      KW_SIGMA,
	"tweet":      KW_TWEET,
	"squad":      KW_SQUAD,
	"hawk_tuah":  KW_HAWK_TUAH,
	"yap":        KW_YAP,
	"till":       KW_TILL,
	"to":         KW_TO,
	"flex":       KW_FLEX,
	"rizz_check": KW_RIZZ_CHECK,
	"nah_fam":    KW_NAH_FAM,
	"yeet":       KW_YEET,
	"skibidi":    KW_SKIBIDI,
	"sus":        KW_SUS,
	"panik":      KW_PANIK,
	"slay":       KW_SLAY,
	"cap":        KW_CAP,
	"nvm":        KW_NVM,
	"delulu":     KW_DELULU,
	"frfr":       KW_FRFR,
	"maybe":      KW_MAYBE,
	"nah":        KW_NAH,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
// gimme is deliberately absent: it is a builtin function, not syntax.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token is a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
