package buildvar

// ToStringList resolves a sequence variable and renders every element as a
// plain string, failing with WrongKind when the variable is not a sequence
// or an element has no scalar form.
func ToStringList(v *Variables, variableName string, mapper PathMapper) ([]string, error) {
	values, err := v.SequenceVariable(variableName, nil, mapper)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		s, err := value.AsString(variableName, mapper)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}
