package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/classlearning/study_journal/configs"
	"github.com/classlearning/study_journal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quizzes scored at or above this percentage earn a printable certificate.
const certificateScoreThreshold = 80

type CertificateService struct {
	DB *gorm.DB
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{DB: db}
}

var certificateTemplate = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; text-align: center; padding: 60px; }
  .frame { border: 12px double #2c5f8a; padding: 60px; }
  h1 { font-size: 42px; color: #2c5f8a; margin-bottom: 8px; }
  .student { font-size: 34px; margin: 24px 0; }
  .detail { font-size: 18px; color: #444; }
  .score { font-size: 28px; color: #1a7a3a; margin: 16px 0; }
</style>
</head>
<body>
  <div class="frame">
    <h1>Certificate of Achievement</h1>
    <p class="detail">This certifies that</p>
    <p class="student">{{.StudentName}}</p>
    <p class="detail">scored</p>
    <p class="score">{{.Percentage}}%</p>
    <p class="detail">on the quiz for the journal entry &ldquo;{{.JournalTitle}}&rdquo;</p>
    <p class="detail">{{.IssuedDate}}</p>
  </div>
</body>
</html>`))

// CheckAndGenerate issues a certificate when a completed quiz clears the
// score threshold. At most one certificate is issued per quiz.
func (s *CertificateService) CheckAndGenerate(user models.User, quiz *models.Quiz, journalTitle string, percentage int) {
	if percentage < certificateScoreThreshold {
		return
	}

	var existing models.Certificate
	if err := s.DB.Where("quiz_id = ?", quiz.ID).First(&existing).Error; err == nil {
		return
	}

	htmlData, err := s.renderHTML(user.FullName, journalTitle, percentage)
	if err != nil {
		log.Printf("🔥 Failed to render certificate HTML: %v", err)
		return
	}

	pdfBytes, err := renderPDF(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to render certificate PDF: %v", err)
		return
	}

	uploadURL, err := uploadCertificate(pdfBytes, user.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload certificate: %v", err)
		return
	}

	certificate := models.Certificate{
		UserID:         user.ID,
		QuizID:         quiz.ID,
		JournalTitle:   journalTitle,
		Percentage:     percentage,
		CertificateURL: uploadURL,
		IssuedAt:       time.Now(),
	}
	if err := s.DB.Create(&certificate).Error; err != nil {
		log.Printf("🔥 Failed to save certificate for user %s: %v", user.ID, err)
		return
	}
	log.Printf("✅ Issued certificate for quiz %s to user %s (%d%%)", quiz.ID, user.ID, percentage)
}

func (s *CertificateService) ListByUser(userID uuid.UUID) ([]models.Certificate, error) {
	var certificates []models.Certificate
	err := s.DB.Where("user_id = ?", userID).Order("issued_at DESC").Find(&certificates).Error
	if err != nil {
		return nil, err
	}
	return certificates, nil
}

func (s *CertificateService) renderHTML(studentName, journalTitle string, percentage int) (string, error) {
	data := struct {
		StudentName  string
		JournalTitle string
		Percentage   int
		IssuedDate   string
	}{
		StudentName:  studentName,
		JournalTitle: journalTitle,
		Percentage:   percentage,
		IssuedDate:   time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := certificateTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func renderPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadCertificate(fileBytes []byte, userID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", userID, uuid.New().String()),
		Folder:       "study_journal_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
