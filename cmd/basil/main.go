// basil CLI - runs, checks and serves BASIC programs
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/goforj/godump"
	"github.com/tliron/commonlog"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/server"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0-5)")
	logPath := flag.String("log", "", "Write logs to this file instead of stderr")
	check := flag.Bool("check", false, "Parse and compile only, report syntax errors")
	disasm := flag.Bool("disasm", false, "Print the compiled instruction listing")
	dumpAST := flag.Bool("dump-ast", false, "Dump the syntax tree")
	tracePath := flag.String("trace", "", "Record console input and output to this file")
	replayPath := flag.String("replay", "", "Feed input from a .toml script or recorded trace and check the output")
	serveGRPC := flag.String("serve-grpc", "", "Serve the compile service over gRPC on this address")
	serveConnect := flag.String("serve-connect", "", "Serve the compile service over Connect on this address")
	lsp := flag.Bool("lsp", false, "Start the language server on stdio")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: basil [options] [file.bas | project-dir]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a BASIC program. Without a file, the entry of the nearest basil.toml is used.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  basil game.bas                  # Run a program\n")
		fmt.Fprintf(os.Stderr, "  basil -check game.bas           # Report syntax errors only\n")
		fmt.Fprintf(os.Stderr, "  basil -disasm game.bas          # Show compiled instructions\n")
		fmt.Fprintf(os.Stderr, "  basil -trace run.trace game.bas # Record a session\n")
		fmt.Fprintf(os.Stderr, "  basil -replay run.trace game.bas # Replay it and compare output\n")
		fmt.Fprintf(os.Stderr, "\nServices:\n")
		fmt.Fprintf(os.Stderr, "  basil -serve-grpc :7071         # Compile service for compiler.mode = \"grpc\"\n")
		fmt.Fprintf(os.Stderr, "  basil -serve-connect :7070      # Compile service for compiler.mode = \"connect\"\n")
		fmt.Fprintf(os.Stderr, "  basil -lsp                      # Language server for editors\n")
	}
	flag.Parse()

	if *logPath != "" {
		commonlog.Configure(*verbose, logPath)
	} else {
		commonlog.Configure(*verbose, nil)
	}

	if *lsp {
		m, _ := loadProject(flag.Arg(0))
		if err := server.NewLSP(m.Language.Version).Run(); err != nil {
			fatalf("LSP error: %v", err)
		}
		return
	}
	if *serveGRPC != "" || *serveConnect != "" {
		if err := serve(*serveGRPC, *serveConnect); err != nil {
			fatalf("Server error: %v", err)
		}
		return
	}

	m, err := loadProject(flag.Arg(0))
	if err != nil {
		fatalf("Error: %v", err)
	}
	path := sourcePath(flag.Arg(0), m)
	src, err := os.ReadFile(path)
	if err != nil {
		fatalf("Error: %v", err)
	}

	if *check || *disasm || *dumpAST {
		os.Exit(inspect(string(src), m.Language.Version, *check, *disasm, *dumpAST))
	}

	os.Exit(run(string(src), m, *tracePath, *replayPath))
}

// inspect handles the non-running modes.
func inspect(src string, version int, check, disasm, dumpAST bool) int {
	tree, syms, err := compiler.Parse(src, compiler.ParseOptions{Version: version})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Syntax error: %v\n", err)
		return 1
	}
	if dumpAST {
		godump.Dump(tree)
	}
	prog, err := compiler.Compile(tree, syms, compiler.CompileOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Syntax error: %v\n", err)
		return 1
	}
	if disasm {
		fmt.Print(prog.Disassemble())
	}
	if check {
		fmt.Printf("ok: %d instructions, %d subroutines\n", len(prog.Instructions), len(prog.Subroutines))
	}
	return 0
}

func serve(grpcAddr, connectAddr string) error {
	svc := server.New(compiler.Build)
	defer svc.Stop()

	errc := make(chan error, 2)
	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return err
		}
		go func() { errc <- server.ServeGRPC(lis, svc) }()
	}
	if connectAddr != "" {
		go func() { errc <- svc.ListenAndServe(connectAddr) }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
