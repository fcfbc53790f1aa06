package escalation

import "encoding/json"

func marshalFactors(factors []string) ([]byte, error) {
	if len(factors) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(factors)
}

func unmarshalFactors(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
