package token

type Type int

const (
	EOF Type = iota
	Ident
	Number
	Character
	String

	// Keywords. Only a handful belong to Simple C, the rest are reserved
	// so that using them is a syntax error rather than an identifier.
	Auto
	Break
	Case
	Char
	Const
	Continue
	Default
	Do
	Double
	Else
	Enum
	Extern
	Float
	For
	Goto
	If
	Int
	Long
	Register
	Return
	Short
	Signed
	Sizeof
	Static
	Struct
	Switch
	Typedef
	Union
	Unsigned
	Void
	Volatile
	While

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma
	Colon
	Question
	Dot
	Arrow
	Eq
	Plus
	Minus
	Star
	Slash
	Rem
	And
	Or
	EqEq
	Neq
	Lt
	Gt
	Lte
	Gte
	AndAnd
	OrOr
	Not
	Inc
	Dec
)

var KeywordMap = map[string]Type{
	"auto":     Auto,
	"break":    Break,
	"case":     Case,
	"char":     Char,
	"const":    Const,
	"continue": Continue,
	"default":  Default,
	"do":       Do,
	"double":   Double,
	"else":     Else,
	"enum":     Enum,
	"extern":   Extern,
	"float":    Float,
	"for":      For,
	"goto":     Goto,
	"if":       If,
	"int":      Int,
	"long":     Long,
	"register": Register,
	"return":   Return,
	"short":    Short,
	"signed":   Signed,
	"sizeof":   Sizeof,
	"static":   Static,
	"struct":   Struct,
	"switch":   Switch,
	"typedef":  Typedef,
	"union":    Union,
	"unsigned": Unsigned,
	"void":     Void,
	"volatile": Volatile,
	"while":    While,
}

var punctuation = map[Type]string{
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semi: ";", Comma: ",", Colon: ":", Question: "?", Dot: ".", Arrow: "->",
	Eq: "=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Rem: "%", And: "&", Or: "|",
	EqEq: "==", Neq: "!=", Lt: "<", Gt: ">", Lte: "<=", Gte: ">=",
	AndAnd: "&&", OrOr: "||", Not: "!", Inc: "++", Dec: "--",
}

// Reverse mapping from Type to the keyword or operator spelling
var TypeStrings = make(map[Type]string)

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
	for typ, str := range punctuation {
		TypeStrings[typ] = str
	}
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Text is the spelling of the token as it appeared in the source, as far as
// it can be reconstructed. Syntax errors quote it.
func (t Token) Text() string {
	switch t.Type {
	case Ident, Number, Character:
		return t.Value
	case String:
		return `"` + t.Value + `"`
	case EOF:
		return ""
	}
	return TypeStrings[t.Type]
}
