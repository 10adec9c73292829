package termination

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"perfhub/internal/domain/core"
	cryptoutil "perfhub/internal/platform/crypto"
)

// LetterInput is everything the letter needs; building the text is a pure
// function of it.
type LetterInput struct {
	Employee         core.Employee
	FinalScore       float64
	FinalUtilization float64
	Reason           string
	EffectiveDate    time.Time
}

// BuildLetterText renders the termination letter body. Deterministic for
// identical input.
func BuildLetterText(in LetterInput) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s %s,\n\n", in.Employee.FirstName, in.Employee.LastName)
	fmt.Fprintf(&buf, "This letter confirms the termination of your employment effective %s.\n\n", in.EffectiveDate.Format("January 2, 2006"))
	fmt.Fprintf(&buf, "Reason: %s\n\n", in.Reason)
	fmt.Fprintf(&buf, "Your final recorded performance score was %.1f with a utilization of %.1f%%. ", in.FinalScore, in.FinalUtilization)
	buf.WriteString("Despite the support provided under your performance improvement plan, the required improvement was not achieved.\n\n")
	buf.WriteString("Please contact Human Resources regarding final pay, benefits continuation, and the return of company property.\n\n")
	buf.WriteString("Sincerely,\nHuman Resources")
	return buf.String()
}

// LetterArtifact is the generated PDF plus its integrity hash. The hash is
// computed over the plaintext PDF, before any encryption at rest.
type LetterArtifact struct {
	Path   string
	SHA256 string
}

// WriteLetterPDF renders the letter to a PDF under dir, hashes it and
// optionally encrypts it at rest.
func WriteLetterPDF(dir string, in LetterInput, crypto *cryptoutil.Service) (LetterArtifact, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Notice of Termination")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, BuildLetterText(in), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return LetterArtifact{}, err
	}

	sum := sha256.Sum256(buf.Bytes())
	artifact := LetterArtifact{SHA256: hex.EncodeToString(sum[:])}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return LetterArtifact{}, err
	}

	name := fmt.Sprintf("termination_%s_%s.pdf", in.Employee.ID, in.EffectiveDate.Format("20060102"))
	payload := buf.Bytes()
	if crypto != nil && crypto.Configured() {
		encrypted, err := crypto.Encrypt(payload)
		if err != nil {
			return LetterArtifact{}, err
		}
		payload = encrypted
		name += ".enc"
	}

	artifact.Path = filepath.Join(dir, name)
	if err := os.WriteFile(artifact.Path, payload, 0o640); err != nil {
		return LetterArtifact{}, err
	}
	return artifact, nil
}
