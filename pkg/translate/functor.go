package translate

// functorOps is the set of intrinsic operators a Functor may lower to, per
// SPEC_FULL's "Functor operator set" decision: the original's opcode
// spelling is unevidenced in the retrieved source, so this repository picks
// an explicit, documented-as-ours set sufficient for ordinary arithmetic,
// string, and logical functors instead of guessing.
var functorOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"&&": true, "||": true, "!": true,
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"min": true, "max": true, "cat": true, "substr": true,
}

// lowerFunctorOp reports whether name is a recognized intrinsic operator.
func lowerFunctorOp(name string) bool {
	return functorOps[name]
}
