package handlers

import (
	"github.com/classlearning/study_journal/services"
	"github.com/gofiber/fiber/v2"
)

type CertificateHandler struct {
	Certificates *services.CertificateService
}

func (h *CertificateHandler) ListMyCertificates(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	certificates, err := h.Certificates.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch certificates"})
	}
	return c.JSON(certificates)
}
