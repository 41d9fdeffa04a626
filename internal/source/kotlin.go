package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// ParseKotlinFile extracts the package header and top-level type FQNs from a
// .kt file. When the file declares top-level functions or properties, the
// compiler emits a synthetic "<Basename>Kt" facade class; a matching virtual
// type is added so scanned bytecode types still find their source.
func ParseKotlinFile(ctx context.Context, path string) (*FileMetadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ParseErrorf(err, "failed to read kotlin file %s", path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(kotlin.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, apperrors.ParseErrorf(err, "failed to parse kotlin file %s", path)
	}
	root := tree.RootNode()

	packageName := ""
	var typeNames []string
	hasTopLevelMembers := false

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_header":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				node := child.NamedChild(j)
				if node.Type() == "identifier" || node.Type() == "qualified_identifier" {
					packageName = node.Content(content)
					break
				}
			}
		case "class_declaration", "object_declaration", "interface_declaration", "annotation_class":
			if name := kotlinDeclarationName(child, content); name != "" {
				typeNames = append(typeNames, name)
			}
		case "function_declaration", "property_declaration":
			hasTopLevelMembers = true
		}
	}

	var fqns []string
	for _, name := range typeNames {
		fqns = append(fqns, qualify(packageName, name))
	}

	if hasTopLevelMembers {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fqns = append(fqns, qualify(packageName, capitalize(base)+"Kt"))
	}

	if packageName != "" && !contains(fqns, packageName) {
		fqns = append(fqns, packageName)
	}

	return &FileMetadata{Path: path, Package: packageName, FQNs: fqns}, nil
}

// kotlinDeclarationName finds the declared name of a class-like node. The
// grammar names class and object identifiers "type_identifier"; no field
// name is attached, so the first matching named child wins.
func kotlinDeclarationName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_identifier" || child.Type() == "simple_identifier" {
			return child.Content(content)
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
