package domain

// Profile describes how documents are exchanged with one target renderer.
type Profile struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// TexMathDollars enables the math extension. When false, math tokens are
	// left opaque and written back untouched.
	TexMathDollars bool `json:"tex_math_dollars" yaml:"tex_math_dollars" mapstructure:"tex_math_dollars"`

	// BlogdownMathInCode disguises math as inline code for markdown renderers
	// that have no notion of math.
	BlogdownMathInCode bool `json:"blogdown_math_in_code" yaml:"blogdown_math_in_code" mapstructure:"blogdown_math_in_code"`
}

// Built-in profile names.
const (
	ProfileDefault  = "default"
	ProfileBlogdown = "blogdown"
	ProfilePlain    = "plain"
)

// DefaultProfile has math enabled and no disguise.
func DefaultProfile() Profile {
	return Profile{Name: ProfileDefault, TexMathDollars: true}
}

// BuiltinProfiles returns the profiles available without configuration.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileDefault:  DefaultProfile(),
		ProfileBlogdown: {Name: ProfileBlogdown, TexMathDollars: true, BlogdownMathInCode: true},
		ProfilePlain:    {Name: ProfilePlain},
	}
}
