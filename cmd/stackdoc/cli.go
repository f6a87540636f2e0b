package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
	"github.com/fwojciec/stackdoc/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Projects  stackdoc.ProjectService
	Documents stackdoc.DocumentService
	Extractor stackdoc.Extractor
	Scraper   stackdoc.Scraper
	Parser    stackdoc.InputParser
	Pipeline  *ingest.Pipeline
	Sessions  *docsync.Controller
	Hub       *collab.Hub
	Writer    stackdoc.DocumentWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  kong.ConfigFlag `help:"TOML config file (default ~/.stackdoc/config.toml)" placeholder:"PATH"`
	DB      string          `name:"db" env:"STACKDOC_DB" help:"SQLite database path"`
	Verbose bool            `short:"v" help:"Log debug output"`

	GeminiAPIKey string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model        string        `default:"gemini-2.5-flash" env:"STACKDOC_MODEL" help:"Gemini model"`
	Strategy     string        `default:"single-pass" enum:"single-pass,two-pass" env:"STACKDOC_STRATEGY" help:"Structuring strategy (single-pass, two-pass)"`
	Distiller    string        `default:"trafilatura" enum:"trafilatura,readability" help:"Main content extractor (trafilatura, readability)"`
	Browser      bool          `env:"STACKDOC_BROWSER" help:"Render pages that need JavaScript with a headless browser"`
	Timeout      time.Duration `default:"12s" help:"Scrape timeout"`
	TokenBudget  int           `default:"0" help:"Token budget for the excerpt sent to the model (0 disables)"`

	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
	Project ProjectCmd `cmd:"" help:"Manage projects"`
	Add     AddCmd     `cmd:"" help:"Add a document to a project"`
	Parse   ParseCmd   `cmd:"" help:"Extract a library name, category and URL from free text"`
	Docs    DocsCmd    `cmd:"" help:"List documents for a project"`
	Show    ShowCmd    `cmd:"" help:"Print a document"`
	Edit    EditCmd    `cmd:"" help:"Replace a document's content with a TipTap JSON file"`
	Export  ExportCmd  `cmd:"" help:"Export a project's documents as markdown files"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a document"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string   `default:":8080" env:"STACKDOC_ADDR" help:"Listen address"`
	Origins []string `env:"STACKDOC_ORIGINS" help:"Allowed CORS origins"`
	MaxBody int64    `default:"4194304" help:"Maximum request body size in bytes"`
}

// ProjectCmd groups the project subcommands.
type ProjectCmd struct {
	Create ProjectCreateCmd `cmd:"" help:"Create a project"`
	List   ProjectListCmd   `cmd:"" help:"List projects"`
	Rename ProjectRenameCmd `cmd:"" help:"Rename a project"`
	Delete ProjectDeleteCmd `cmd:"" help:"Delete a project and its documents"`
}

// ProjectCreateCmd is the "project create" subcommand.
type ProjectCreateCmd struct {
	Name string `arg:"" help:"Project name"`
}

// ProjectListCmd is the "project list" subcommand.
type ProjectListCmd struct{}

// ProjectRenameCmd is the "project rename" subcommand.
type ProjectRenameCmd struct {
	Name    string `arg:"" help:"Current project name"`
	NewName string `arg:"" help:"New project name"`
}

// ProjectDeleteCmd is the "project delete" subcommand.
type ProjectDeleteCmd struct {
	Name  string `arg:"" help:"Project name"`
	Force bool   `help:"Confirm deletion"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Project  string `arg:"" help:"Project name"`
	URL      string `arg:"" optional:"" help:"Page URL (omit for an empty document)"`
	Name     string `short:"n" help:"Document name"`
	Category string `short:"c" help:"Document category"`
	Describe string `short:"d" help:"Describe the library in plain words; missing name, category and URL are filled in from it"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	Input []string `arg:"" help:"Free text describing a library"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Project string `arg:"" help:"Project name"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID   string `arg:"" help:"Document ID"`
	JSON bool   `help:"Print the TipTap tree instead of markdown"`
}

// EditCmd is the "edit" subcommand.
type EditCmd struct {
	ID   string `arg:"" help:"Document ID"`
	File string `arg:"" type:"existingfile" help:"TipTap JSON file"`
	As   string `default:"stackdoc" help:"Collaborator name shown to other editors"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Project string `arg:"" help:"Project name"`
	Dir     string `short:"o" default:"." type:"path" help:"Output directory"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Document ID"`
	Force bool   `help:"Confirm deletion"`
}
