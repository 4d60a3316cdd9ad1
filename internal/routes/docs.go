package routes

import (
	"sort"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/gofiber/fiber/v2"
)

type routeDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// registerDocsRoutes serves a machine readable index of the registered routes
// and the module keys the generic API accepts.
func registerDocsRoutes(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(fiber.Map{
			"routes":  routeIndex(app),
			"modules": crud.Modules(),
		})
	})
}

func routeIndex(app *fiber.App) []routeDoc {
	seen := make(map[string]struct{})
	docs := make([]routeDoc, 0)
	for _, route := range app.GetRoutes(true) {
		if route.Method == fiber.MethodHead || strings.HasPrefix(route.Path, "/docs") {
			continue
		}
		key := route.Method + " " + route.Path
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		docs = append(docs, routeDoc{Method: route.Method, Path: route.Path})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Path != docs[j].Path {
			return docs[i].Path < docs[j].Path
		}
		return docs[i].Method < docs[j].Method
	})
	return docs
}
