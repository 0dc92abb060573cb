package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/pipedef/internal/refid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// absoluteFunc implements `absolute(id)`, which marks a build type id as
// belonging to another project on the CI server.
var absoluteFunc = function.New(&function.Spec{
	Description: "Marks a build type id as absolute.",
	Params: []function.Parameter{
		{Name: "id", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		id := args[0].AsString()
		if err := refid.ValidateID(id); err != nil {
			return cty.NilVal, function.NewArgError(0, err)
		}
		return cty.StringVal(refid.Absolute(id).String()), nil
	},
})

// newEvalContext returns the evaluation context used for every file. Only
// pure string helpers are exposed; there are no variables.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"absolute":  absoluteFunc,
			"concat":    stdlib.ConcatFunc,
			"format":    stdlib.FormatFunc,
			"join":      stdlib.JoinFunc,
			"lower":     stdlib.LowerFunc,
			"trimspace": stdlib.TrimSpaceFunc,
			"upper":     stdlib.UpperFunc,
		},
	}
}
