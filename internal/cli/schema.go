package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// SchemaCmd dumps the command tree as JSON for scripting and doc generation
type SchemaCmd struct {
	Command string `arg:"" optional:"" help:"Command path to describe (e.g., 'messages list')"`
}

type commandSchema struct {
	Name     string           `json:"name"`
	Kind     string           `json:"kind"`
	Help     string           `json:"help,omitempty"`
	Aliases  []string         `json:"aliases,omitempty"`
	Hidden   bool             `json:"hidden,omitempty"`
	Args     []argSchema      `json:"args,omitempty"`
	Flags    []flagSchema     `json:"flags,omitempty"`
	Commands []*commandSchema `json:"commands,omitempty"`
}

type argSchema struct {
	Name     string `json:"name"`
	Help     string `json:"help,omitempty"`
	Required bool   `json:"required,omitempty"`
}

type flagSchema struct {
	Name     string   `json:"name"`
	Short    string   `json:"short,omitempty"`
	Help     string   `json:"help,omitempty"`
	Type     string   `json:"type"`
	Default  string   `json:"default,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Env      string   `json:"env,omitempty"`
	Required bool     `json:"required,omitempty"`
}

// Run executes the schema command
func (cmd *SchemaCmd) Run(ctx *kong.Context) error {
	node := ctx.Model.Node
	if cmd.Command != "" {
		var err error
		if node, err = descend(node, strings.Fields(cmd.Command)); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(describeNode(node))
}

// descend follows one path segment per tree level.
func descend(node *kong.Node, path []string) (*kong.Node, error) {
	for _, segment := range path {
		next := (*kong.Node)(nil)
		for _, child := range node.Children {
			if child.Name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("command not found: %s", strings.Join(path, " "))
		}
		node = next
	}

	return node, nil
}

func describeNode(node *kong.Node) *commandSchema {
	s := &commandSchema{
		Name:    node.Name,
		Kind:    nodeKind(node),
		Help:    node.Help,
		Aliases: node.Aliases,
		Hidden:  node.Hidden,
	}

	for _, arg := range node.Positional {
		s.Args = append(s.Args, argSchema{
			Name:     arg.Name,
			Help:     arg.Help,
			Required: arg.Required,
		})
	}

	for _, flag := range node.Flags {
		// Kong injects these on every node.
		if flag.Name == "help" || flag.Name == "version" {
			continue
		}
		s.Flags = append(s.Flags, describeFlag(flag))
	}

	for _, child := range node.Children {
		s.Commands = append(s.Commands, describeNode(child))
	}

	return s
}

func describeFlag(flag *kong.Flag) flagSchema {
	f := flagSchema{
		Name:     flag.Name,
		Help:     flag.Help,
		Type:     "string",
		Default:  flag.Default,
		Required: flag.Required,
	}

	if flag.Value != nil && flag.Value.Target.IsValid() {
		f.Type = fmt.Sprintf("%T", flag.Value.Target.Interface())
	}
	if flag.Short != 0 {
		f.Short = string(flag.Short)
	}
	if flag.Enum != "" {
		f.Enum = strings.Split(flag.Enum, ",")
	}
	if len(flag.Envs) > 0 {
		f.Env = flag.Envs[0]
	}

	return f
}

func nodeKind(node *kong.Node) string {
	switch node.Type {
	case kong.ApplicationNode:
		return "application"
	case kong.CommandNode:
		return "command"
	case kong.ArgumentNode:
		return "argument"
	default:
		return "unknown"
	}
}
