package savestate

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type chunk struct {
	Assignments []*assignment `( @@ ";"? )*`
}

type assignment struct {
	Pos   lexer.Position
	Name  string    `@Ident "="`
	Value *valueAST `@@`
}

type valueAST struct {
	Pos    lexer.Position
	Nil    bool      `(  @"nil"`
	True   bool      ` | @"true"`
	False  bool      ` | @"false"`
	Number *string   ` | @Number`
	Str    *string   ` | @String`
	Long   *string   ` | @LongString`
	Table  *tableAST ` | @@ )`
}

type tableAST struct {
	Fields []*fieldAST `"{" ( @@ ( ( "," | ";" ) @@ )* ( "," | ";" )? )? "}"`
}

type fieldAST struct {
	Key   *valueAST `(  "[" @@ "]" "="`
	Name  *string   ` | @Ident "=" )?`
	Value *valueAST `@@`
}

var parser = participle.MustBuild[chunk](
	participle.Lexer(luaLexer),
	participle.UseLookahead(2),
)
