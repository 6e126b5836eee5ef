package convert

// ToStringSlice converts v to []string. Returns nil if v isn't already a
// []string or a []interface{} whose elements are all strings.
func ToStringSlice(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		result := make([]string, len(val))
		for i, item := range val {
			if s, ok := item.(string); ok {
				result[i] = s
			} else {
				return nil
			}
		}
		return result
	}
	return nil
}
