package slidescore

import (
	"io"
	"strconv"
	"strings"

	"github.com/pathomics/annio/anns"
)

// Result is one annotation score as returned by the Scores endpoint.
// TMA fields are only present for tissue-microarray studies.
type Result struct {
	ImageID        int    `json:"imageID"`
	ImageName      string `json:"imageName"`
	User           string `json:"user"`
	TMARow         *int   `json:"tmaRow,omitempty"`
	TMACol         *int   `json:"tmaCol,omitempty"`
	TMASampleID    string `json:"tmaSampleID,omitempty"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	LastModifiedOn string `json:"lastModifiedOn,omitempty"`
}

// Row renders the tab-separated export form of the result:
// imageID, image name, user, [tmaRow, tmaCol, tmaSampleID,]
// question, answer. This is the row grammar the annotation parser
// consumes and the UploadResults endpoint expects.
func (r Result) Row() string {
	fields := []string{strconv.Itoa(r.ImageID), r.ImageName, r.User}
	if r.TMARow != nil && r.TMACol != nil {
		fields = append(fields, strconv.Itoa(*r.TMARow), strconv.Itoa(*r.TMACol), r.TMASampleID)
	}
	fields = append(fields, r.Question, r.Answer)

	return strings.Join(fields, "\t")
}

// RowSource renders results as a parser-ready row stream: the export
// header first, then one row per result. Results with TMA fields are
// excluded - their arity does not match the header contract.
func RowSource(results []Result) io.Reader {
	var sb strings.Builder
	sb.WriteString(strings.Join(anns.Header, "\t"))
	sb.WriteByte('\n')
	for _, r := range results {
		if r.TMARow != nil && r.TMACol != nil {
			continue
		}
		sb.WriteString(r.Row())
		sb.WriteByte('\n')
	}

	return strings.NewReader(sb.String())
}
