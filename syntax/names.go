package syntax

func ParseTypeName(parser *Parser) (string, *Error) {
	return parser.Token("Name", TokenConfig{Name: "a type name"})
}

func ParseProtocolName(parser *Parser) (string, *Error) {
	return parser.Token("Name", TokenConfig{Name: "a protocol name"})
}

func ParseFunctionName(parser *Parser) (string, *Error) {
	return parser.Token("Name", TokenConfig{Name: "a function name"})
}

func ParseLabel(parser *Parser) (string, *Error) {
	label, ok, err := ParseOptional(parser, func(parser *Parser) (string, *Error) {
		return parser.Token("UnderscoreKeyword")
	})
	if err != nil {
		return "", err
	}
	if ok {
		return label, nil
	}

	return parser.Token("Name", TokenConfig{Name: "a parameter label"})
}

// ParseTypeParameterName accepts a name or a canonical `τ_d_i` parameter.
func ParseTypeParameterName(parser *Parser) (string, *Error) {
	name, ok, err := ParseOptional(parser, func(parser *Parser) (string, *Error) {
		return parser.Token("CanonicalName")
	})
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}

	return parser.Token("Name", TokenConfig{Name: "a type parameter name"})
}
