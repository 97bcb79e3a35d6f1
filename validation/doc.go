// Package validation validates configuration structs using
// go-playground/validator tags.
//
//	type Config struct {
//	    Protocol string `mapstructure:"protocol" validate:"oneof=tcp udp unix ssl tls"`
//	}
//	err := validation.Validate(cfg)
//
// Besides the stock validator tags, the "charset" tag accepts any character
// encoding name known to golang.org/x/text (e.g. "UTF-8", "ISO-8859-1").
package validation
