package cel

// DefaultRules is the schema applied when the config supplies none.
// Fields are optional (the signal computer substitutes defaults), but
// when present they must carry the expected type.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "message_not_empty",
			Expression: `size(message) > 0`,
		},
		{
			Name:       "symbol_is_string",
			Expression: `!('symbol' in message) || type(message.symbol) == string`,
		},
		{
			Name:       "price_is_numeric",
			Expression: `!('price' in message) || type(message.price) == double || type(message.price) == int`,
		},
		{
			Name:       "moving_average_is_numeric",
			Expression: `!('moving_average' in message) || type(message.moving_average) == double || type(message.moving_average) == int`,
		},
	}
}
