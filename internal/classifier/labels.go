package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// LoadLabels reads the class-index to label mapping artifact. The file is
// read once at startup and the returned map is treated as immutable for the
// process lifetime.
func LoadLabels(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse labels file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}

	labels := make(map[int]string, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("label index %q is not an integer: %w", k, err)
		}
		labels[idx] = v
	}
	return labels, nil
}
