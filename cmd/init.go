package cmd

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
)

//go:embed templates/*
var tplFS embed.FS

// scaffold files: template -> path inside the project
var scaffold = map[string]string{
	"templates/main.sts.tpl":        "src/main.sts",
	"templates/storyscript.yml.tpl": "storyscript.yml",
	"templates/gitignore.tpl":       ".gitignore",
}

// init: scaffold a new project
var InitCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Scaffold a new StoryScript project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var targetDir, name string
		if len(args) == 1 {
			targetDir, name = args[0], filepath.Base(args[0])
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			targetDir, name = ".", filepath.Base(cwd)
		}

		fmt.Printf("↪ scaffolding new project %q ...\n", name)
		if err := scaffoldProject(targetDir, name); err != nil {
			return err
		}
		fmt.Printf("✓ project %q initialized!\n", name)
		return nil
	},
}

// scaffoldProject writes the template files into targetDir, which must not exist
// unless it is the working directory.
func scaffoldProject(targetDir, name string) error {
	if targetDir != "." {
		if _, err := os.Stat(targetDir); err == nil {
			return fmt.Errorf("directory %q already exists", targetDir)
		}
	}
	for _, dir := range []string{"src", "out"} {
		if err := os.MkdirAll(filepath.Join(targetDir, dir), 0o755); err != nil {
			return err
		}
	}

	data := map[string]string{"ProjectName": name}
	for tplPath, outName := range scaffold {
		if err := writeTpl(tplPath, filepath.Join(targetDir, outName), data); err != nil {
			return err
		}
	}
	return nil
}

// writeTpl loads tplName from tplFS, executes it with data, and writes to outPath
func writeTpl(tplName, outPath string, data any) error {
	t, err := template.ParseFS(tplFS, tplName)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Execute(f, data)
}
