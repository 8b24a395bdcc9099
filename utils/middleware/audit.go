package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/cityforge/cityforge/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records an audit entry for state-changing admin
// actions. Applied after RequireAdmin; logging is best-effort and
// never fails the request.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok {
			return c.Next()
		}

		// Parse resource ID from params if available
		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		// Capture the request body as the "new value" for writes
		var newValue datatypes.JSON
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			body := c.Body()
			if len(body) > 0 && json.Valid(body) {
				newValue = datatypes.JSON(append([]byte(nil), body...))
			}
		}

		ip := c.IP()
		userAgent := c.Get("User-Agent")
		description := c.Method() + " " + c.Path()

		// Execute the actual handler
		err := c.Next()

		go func() {
			entry := model.AdminAuditLog{
				AdminID:     adminUser.ID,
				Action:      action,
				Resource:    resource,
				ResourceID:  resourceID,
				NewValue:    newValue,
				IPAddress:   ip,
				UserAgent:   userAgent,
				Description: description,
			}

			db.Create(&entry)
		}()

		return err
	}
}
