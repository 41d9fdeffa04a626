package source

import (
	"context"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// javaTypeDeclarations are the top-level declarations that produce a named
// type in a compilation unit.
var javaTypeDeclarations = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"annotation_type_declaration": true,
	"record_declaration":          true,
}

// ParseJavaFile extracts the package declaration and every top-level type
// FQN from a .java file. Module declarations keep their raw name; a
// package-info file contributes its package as an FQN.
func ParseJavaFile(ctx context.Context, path string) (*FileMetadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ParseErrorf(err, "failed to read java file %s", path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, apperrors.ParseErrorf(err, "failed to parse java file %s", path)
	}
	root := tree.RootNode()

	packageName := ""
	var typeNames []string
	var moduleNames []string

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch {
		case child.Type() == "package_declaration":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				node := child.NamedChild(j)
				if node.Type() == "scoped_identifier" || node.Type() == "identifier" {
					packageName = node.Content(content)
					break
				}
			}
		case javaTypeDeclarations[child.Type()]:
			if name := child.ChildByFieldName("name"); name != nil {
				typeNames = append(typeNames, name.Content(content))
			}
		case child.Type() == "module_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				moduleNames = append(moduleNames, name.Content(content))
			}
		}
	}

	var fqns []string
	for _, name := range typeNames {
		fqns = append(fqns, qualify(packageName, name))
	}
	// Module names are already fully qualified.
	fqns = append(fqns, moduleNames...)

	if filepath.Base(path) == "package-info.java" && packageName != "" && !contains(fqns, packageName) {
		fqns = append(fqns, packageName)
	}

	return &FileMetadata{Path: path, Package: packageName, FQNs: fqns}, nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
