package internal

import (
	"bytes"
	"io"
	"log"
	"os"

	"github.com/llir/llvm/ir"
)

// Source is one input file held in memory for the lexer and for diagnostics.
type Source struct {
	Name    string
	Content []byte
}

func NewSource(name string, content string) *Source {
	return &Source{Name: name, Content: []byte(content)}
}

// ReadSource reads path, or stdin when path is "-".
func ReadSource(path string) (*Source, error) {
	if path == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return &Source{Name: "<stdin>", Content: content}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Source{Name: path, Content: content}, nil
}

// LineAt returns the line holding offset, without its line break.
func (src *Source) LineAt(offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src.Content) {
		offset = len(src.Content)
	}
	start := bytes.LastIndexByte(src.Content[:offset], '\n') + 1
	end := bytes.IndexByte(src.Content[offset:], '\n')
	if end < 0 {
		end = len(src.Content)
	} else {
		end += offset
	}
	return string(bytes.TrimRight(src.Content[start:end], "\r"))
}

type Options struct {
	// DiagOutput receives diagnostics as they are reported, nil drops them.
	DiagOutput io.Writer
	// Logger receives the phase log, nil drops it.
	Logger       *log.Logger
	WarnShadow   bool
	TargetTriple string
	NoColor      bool
}

func (opts Options) logger() *log.Logger {
	if opts.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return opts.Logger
}

// compilation holds what one run of the pipeline shares between phases.
type compilation struct {
	src    *Source
	opts   Options
	logger *log.Logger
	diag   *DiagEngine
	types  *TypeContext
}

func newCompilation(src *Source, opts Options) *compilation {
	color := !opts.NoColor && opts.DiagOutput != nil && isTerminal(opts.DiagOutput)
	return &compilation{
		src:    src,
		opts:   opts,
		logger: opts.logger(),
		diag:   NewDiagEngine(src, opts.DiagOutput, color),
		types:  NewTypeContext(),
	}
}

func (c *compilation) parse() (*Program, error) {
	c.logger.Println("compiler: start parser at: " + c.src.Name)
	lexer := NewLexer(c.src, c.diag, c.types)
	sema := NewSema(c.diag, c.types, c.opts)
	prog, err := NewParser(lexer, sema).ParseProgram()
	if err != nil {
		return nil, err
	}
	c.logger.Printf("compiler: parsed %d statements, %d warnings", len(prog.Stmts), len(c.diag.Diagnostics())-c.diag.ErrorCount())
	return prog, nil
}

// Compile runs lexer, parser with semantic actions, code generator and verifier over src.
// It stops at the first error diagnostic.
func Compile(src *Source, opts Options) (*ir.Module, error) {
	c := newCompilation(src, opts)
	prog, err := c.parse()
	if err != nil {
		return nil, err
	}
	c.logger.Println("compiler: start generate codes")
	m, err := NewCodeGenerator(c.types, opts).Generate(prog, src.Name)
	if err != nil {
		return nil, err
	}
	c.logger.Println("compiler: start verifier")
	err = VerifyModule(m)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Tokenize lexes the whole of src. Lexing goes on past errors, the first one is returned
// with every token.
func Tokenize(src *Source, opts Options) ([]Token, error) {
	c := newCompilation(src, opts)
	c.logger.Println("compiler: start tokenizer at: " + src.Name)
	tokens := NewLexer(src, c.diag, c.types).Tokenize()
	return tokens, c.diag.Err()
}

// Parse stops after the parser, for the AST printing modes.
func Parse(src *Source, opts Options) (*Program, error) {
	return newCompilation(src, opts).parse()
}

// EmitLLVM writes m as textual LLVM IR.
func EmitLLVM(w io.Writer, m *ir.Module) error {
	_, err := io.WriteString(w, m.String())
	return err
}
