package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"gensig/colors"
	"gensig/config"
	"gensig/database"
	"gensig/driver"
	"gensig/serialize"
	"gensig/syntax"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

type Context struct {
	Config *config.Config
}

// CompileFlags are shared by the commands that compile source files.
// Flags override gensig.toml, and GENSIG_* variables (from the environment
// or a .env file) override both.
type CompileFlags struct {
	Lib            []string `type:"path"`
	Facts          bool
	FilterLines    []string `short:"l" help:"Only report on a file, a line, or a range of lines (path:start-end)."`
	FilterFeedback []string
	MaxSteps       int      `env:"GENSIG_MAX_STEPS" help:"Rewrite steps before completion gives up."`
	MaxDepth       int      `env:"GENSIG_MAX_DEPTH" help:"Nesting depth before completion gives up."`
	NoVerify       bool     `env:"GENSIG_NO_VERIFY"`
	NoMinimality   bool     `env:"GENSIG_NO_MINIMALITY"`
	Paths          []string `arg:"" name:"path" type:"path"`
	Profile        string   `type:"path"`
}

type CheckCmd struct {
	CompileFlags
}

func (cmd *CheckCmd) Run(ctx *Context) error {
	result, err := compile(&cmd.CompileFlags, ctx.Config)
	fmt.Print(result.output.String())
	return err
}

type DumpCmd struct {
	CompileFlags
	Machines bool   `help:"Also print the equivalence classes behind each signature."`
	Graph    string `type:"path" help:"Write each signature's equivalence classes as JSON."`
}

func (cmd *DumpCmd) Run(ctx *Context) error {
	result, err := compile(&cmd.CompileFlags, ctx.Config)

	fmt.Println(colors.Title("Signatures:"))
	driver.WriteSignatures(result.db, result.filter, os.Stdout)

	if cmd.Machines {
		fmt.Println(colors.Title("Machines:"))
		driver.WriteMachines(result.db, result.filter, os.Stdout)
	}

	if cmd.Graph != "" {
		data, err := json.MarshalIndent(driver.Graphs(result.db, result.filter), "", "  ")
		if err != nil {
			return err
		}

		if err := os.WriteFile(cmd.Graph, data, 0644); err != nil {
			return err
		}
	}

	fmt.Print(result.output.String())
	return err
}

type EncodeCmd struct {
	CompileFlags
	Output  string `short:"o" type:"path" required:""`
	Compare string `type:"path" help:"Report signatures that differ from an existing archive."`
}

func (cmd *EncodeCmd) Run(ctx *Context) error {
	result, err := compile(&cmd.CompileFlags, ctx.Config)
	fmt.Print(result.output.String())
	if err != nil {
		return err
	}

	archive := serialize.NewArchive()
	for _, named := range driver.Signatures(result.db, result.filter) {
		archive.Add(named.Name, named.Signature)
	}

	data, err := serialize.Marshal(archive)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cmd.Output, data, 0644); err != nil {
		return err
	}

	if cmd.Compare != "" {
		previous, err := os.ReadFile(cmd.Compare)
		if err != nil {
			return err
		}

		other, err := serialize.Unmarshal(previous)
		if err != nil {
			return err
		}

		changed := serialize.Diff(other, archive)
		for _, name := range changed {
			fmt.Printf("changed: %s\n", name)
		}

		if len(changed) > 0 {
			return fmt.Errorf("%d signature(s) changed", len(changed))
		}
	}

	return nil
}

type FormatCmd struct {
	Path string `arg:"" type:"path" required:""`
}

func (cmd *FormatCmd) Run(ctx *Context) error {
	return format(cmd)
}

var cli struct {
	Verbose int  `short:"v" type:"counter" env:"GENSIG_VERBOSITY"`
	NoColor bool `env:"NO_COLOR"`

	Check  CheckCmd  `cmd:"" default:"withargs" help:"Build every signature and report feedback."`
	Dump   DumpCmd   `cmd:"" help:"Print every declaration's signature."`
	Encode EncodeCmd `cmd:"" help:"Write every signature to a CBOR archive."`
	Format FormatCmd `cmd:"" help:"Format a source file."`
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	// Before parsing, so `env` tags see the variables
	if err := config.LoadEnv(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	ctx := kong.Parse(&cli)

	cfg, err := config.FindAndLoad(cwd)
	ctx.FatalIfErrorf(err)

	if cli.Verbose > 0 {
		cfg.Verbosity = cli.Verbose
	}

	commonlog.Configure(cfg.Verbosity, nil)

	if cli.NoColor || !cfg.Color {
		color.NoColor = true
	}

	err = ctx.Run(&Context{Config: cfg})
	ctx.FatalIfErrorf(err)
}

type compileResult struct {
	db     *database.Db
	filter func(node database.Node) bool
	output strings.Builder
}

func compile(cmd *CompileFlags, cfg *config.Config) (*compileResult, error) {
	if cmd.Profile != "" {
		cpu, err := os.Create(filepath.Join(cmd.Profile, "cpu.pprof"))
		if err != nil {
			panic(err)
		}

		err = pprof.StartCPUProfile(cpu)
		if err != nil {
			panic(err)
		}

		defer pprof.StopCPUProfile()

		mem, err := os.Create(filepath.Join(cmd.Profile, "mem.pprof"))
		if err != nil {
			panic(err)
		}

		defer func() {
			err := pprof.WriteHeapProfile(mem)
			if err != nil {
				panic(err)
			}
		}()
	}

	if cmd.MaxSteps > 0 {
		cfg.Limits.MaxSteps = cmd.MaxSteps
	}

	if cmd.MaxDepth > 0 {
		cfg.Limits.MaxDepth = cmd.MaxDepth
	}

	options := driver.Options{
		Verify:     cfg.Verify && !cmd.NoVerify,
		Minimality: cfg.Minimality && !cmd.NoMinimality,
	}

	db, root := driver.MakeRoot(cfg.MachineLimits())
	result := &compileResult{
		db: db,
		filter: func(node database.Node) bool {
			return false
		},
	}

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	libs := append(slices.Clone(cfg.Lib), cmd.Lib...)

	layers := make([]driver.Layer, 0, len(libs)+1)
	for _, path := range libs {
		layer, err := driver.ReadLayers(db, path, cwd)
		if err != nil {
			return result, err
		}
		layers = append(layers, layer)
	}

	var files driver.Layer
	for i, path := range cmd.Paths {
		path, err := filepath.Rel(cwd, path)
		if err != nil {
			return result, err
		}

		file, err := driver.ReadFile(db, path)
		if err != nil {
			return result, err
		}

		files.Paths = append(files.Paths, path)

		if file != nil {
			if i > 0 {
				files.Name += ", "
			}

			files.Name += path

			files.Files = append(files.Files, file)
		}
	}

	layers = append(layers, files)

	var lastPath string
	if len(files.Paths) > 0 {
		lastPath = files.Paths[len(files.Paths)-1]
	}

	var filters []database.FilterFunc
	for _, entry := range cmd.FilterLines {
		if filter, ok := driver.ParseFilter(entry, lastPath); ok {
			filters = append(filters, filter)
		}
	}

	fromFiles := files.Filter()
	result.filter = func(node database.Node) bool {
		return fromFiles(node) && (len(filters) == 0 || slices.ContainsFunc(filters, func(f database.FilterFunc) bool {
			return f(node)
		}))
	}

	for _, layer := range layers {
		_, err = fmt.Fprintf(os.Stderr, "Compiling %s...", layer.Name)
		if err != nil {
			panic(err)
		}

		start := time.Now()
		driver.Compile(db, root, layer.Files, options)
		duration := time.Since(start)

		_, err = fmt.Fprintf(os.Stderr, " done (%dms)\n", duration.Milliseconds())
		if err != nil {
			panic(err)
		}
	}

	if cmd.Facts {
		_, err := fmt.Fprintln(&result.output, colors.Title("Facts:"))
		if err != nil {
			panic(err)
		}

		db.Write(&result.output, result.filter)
	}

	feedbackCount := driver.WriteFeedback(db, result.filter, cmd.FilterFeedback, &result.output)
	if feedbackCount > 0 {
		return result, fmt.Errorf("compilation failed with %d feedback item(s)", feedbackCount)
	}

	return result, nil
}

func format(cmd *FormatCmd) error {
	source, err := os.ReadFile(cmd.Path)
	if err != nil {
		return err
	}

	formatted, syntaxError := syntax.Format(string(source))
	if syntaxError != nil {
		return fmt.Errorf("syntax error: %v", syntaxError)
	}

	fmt.Println(formatted)

	return nil
}
