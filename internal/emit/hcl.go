package emit

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// renderHCL writes the document back in the input syntax, so the output
// can be loaded again.
func renderHCL(doc *Document) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	if doc.Project != nil {
		body := root.AppendNewBlock("project", []string{doc.Project.ID}).Body()
		setString(body, "name", doc.Project.Name)
		setString(body, "version", doc.Project.Version)
		root.AppendNewline()
	}

	for _, v := range doc.VcsRoots {
		body := root.AppendNewBlock("vcs_root", []string{v.ID}).Body()
		setString(body, "name", v.Name)
		setString(body, "url", v.URL)
		setString(body, "branch", v.Branch)
		setStrings(body, "branch_spec", v.BranchSpec)
		root.AppendNewline()
	}

	for i, bt := range doc.BuildTypes {
		if i > 0 {
			root.AppendNewline()
		}
		writeBuildType(root.AppendNewBlock("build_type", []string{bt.ID}).Body(), bt)
	}

	return hclwrite.Format(f.Bytes()), nil
}

func writeBuildType(body *hclwrite.Body, bt BuildTypeDoc) {
	setString(body, "name", bt.Name)
	setString(body, "description", bt.Description)
	setStrings(body, "artifact_rules", bt.ArtifactRules)
	setStrings(body, "vcs_roots", bt.Vcs)

	for _, s := range bt.Steps {
		body.AppendNewline()
		sb := body.AppendNewBlock("step", []string{s.Type}).Body()
		setString(sb, "name", s.Name)
		setString(sb, "content", s.ScriptContent)
		setString(sb, "file", s.File)
		setString(sb, "sub_command", s.SubCommand)
	}

	for _, r := range bt.Requirements {
		body.AppendNewline()
		rb := body.AppendNewBlock("requirement", []string{r.Kind}).Body()
		setString(rb, "property", r.Property)
		setString(rb, "value", r.Value)
	}

	for _, feature := range bt.Features {
		body.AppendNewline()
		fb := body.AppendNewBlock("feature", []string{feature.Type}).Body()
		setString(fb, "vcs_root", feature.VcsRoot)
		setString(fb, "provider", feature.Provider)
		setString(fb, "auth_token", feature.AuthToken)
		setString(fb, "author_role_filter", feature.AuthorRoleFilter)
	}

	for _, d := range bt.Dependencies {
		body.AppendNewline()
		db := body.AppendNewBlock("dependency", nil).Body()
		target := hclwrite.TokensForValue(cty.StringVal(d.BuildType.ID))
		if d.BuildType.Absolute {
			target = hclwrite.TokensForFunctionCall("absolute", target)
		}
		db.SetAttributeRaw("build_type", target)
		if d.Artifacts != nil {
			ab := db.AppendNewBlock("artifacts", nil).Body()
			ab.SetAttributeValue("clean_destination", cty.BoolVal(d.Artifacts.CleanDestination))
			ab.SetAttributeValue("rules", stringList(d.Artifacts.Rules))
		}
	}
}

// setString skips empty values, which the loader treats as unset.
func setString(body *hclwrite.Body, name, value string) {
	if value == "" {
		return
	}
	body.SetAttributeValue(name, cty.StringVal(value))
}

func setStrings(body *hclwrite.Body, name string, values []string) {
	if len(values) == 0 {
		return
	}
	body.SetAttributeValue(name, stringList(values))
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(values))
	for _, v := range values {
		vals = append(vals, cty.StringVal(v))
	}
	return cty.ListVal(vals)
}
