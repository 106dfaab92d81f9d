package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// questionNamespace scopes content-derived question IDs.
var questionNamespace = uuid.MustParse("7b0f6c1e-4d0a-5c8e-9a51-2f3c8e61d4b7")

// QuestionID derives a stable question ID from its stream and scenario
// text. Whitespace differences do not change the ID.
func QuestionID(stream StreamID, scenario string) string {
	normalized := strings.Join(strings.Fields(scenario), " ")
	return uuid.NewSHA1(questionNamespace, []byte(string(stream)+"\x00"+normalized)).String()
}
