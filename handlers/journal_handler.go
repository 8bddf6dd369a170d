package handlers

import (
	"time"

	"github.com/classlearning/study_journal/models"
	"github.com/classlearning/study_journal/services"
	"github.com/classlearning/study_journal/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type JournalHandler struct {
	DB  *gorm.DB
	Hub *websocket.Hub
}

type JournalRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Grade   int    `json:"grade" validate:"required,min=4,max=6"`
	Date    string `json:"date" validate:"required"`
}

func (r JournalRequest) validDate() bool {
	_, err := time.Parse("2006-01-02", r.Date)
	return err == nil
}

func (h *JournalHandler) CreateJournal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	var req JournalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.validDate() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Date must be in YYYY-MM-DD format"})
	}

	journal := models.Journal{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Grade:   req.Grade,
		Date:    req.Date,
	}
	if err := h.DB.Create(&journal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create journal"})
	}

	h.Hub.Publish(websocket.JournalCreated, journal)
	return c.Status(fiber.StatusCreated).JSON(journal)
}

func (h *JournalHandler) ListJournals(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	var journals []models.Journal
	if err := h.DB.Where("user_id = ?", userID).Order("date DESC, created_at DESC").Find(&journals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch journals"})
	}
	return c.JSON(journals)
}

func (h *JournalHandler) GetJournal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	journalID := c.Params("journalId")
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ? AND user_id = ?", journalID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Journal not found"})
	}
	return c.JSON(journal)
}

func (h *JournalHandler) UpdateJournal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	journalID := c.Params("journalId")
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ? AND user_id = ?", journalID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Journal not found"})
	}

	var req JournalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.validDate() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Date must be in YYYY-MM-DD format"})
	}

	journal.Title = req.Title
	journal.Content = req.Content
	journal.Grade = req.Grade
	journal.Date = req.Date
	if err := h.DB.Save(&journal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update journal"})
	}

	h.Hub.Publish(websocket.JournalUpdated, journal)
	return c.JSON(journal)
}

func (h *JournalHandler) DeleteJournal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	journalID := c.Params("journalId")
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ? AND user_id = ?", journalID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Journal not found"})
	}

	if err := h.DB.Delete(&journal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete journal"})
	}

	h.Hub.Publish(websocket.JournalDeleted, journal)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JournalHandler) GetJournalStats(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	var journals []models.Journal
	if err := h.DB.Where("user_id = ?", userID).Find(&journals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch journals"})
	}

	return c.JSON(services.ComputeJournalStats(journals))
}
