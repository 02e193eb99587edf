package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/people"
)

// personResponse is a stored person in the shape every client schema can
// read: V2 clients use display_name and slug, V1 clients use name.
type personResponse struct {
	people.Person
	Name string `json:"name"`
}

func newPersonResponse(p people.Person) personResponse {
	return personResponse{Person: p, Name: p.DisplayName}
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	results := s.health.RuntimeHealthCheck(ctx)
	services := gin.H{}
	for name, err := range results {
		if err != nil {
			services[name] = err.Error()
		} else {
			services[name] = "healthy"
		}
	}

	if err := s.health.CriticalFailures(results); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"message":   err.Error(),
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   healthyMessage,
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	})
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.storage)
}

func (s *Server) getPeople(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "/" || slug == "" {
		s.listPeople(c)
		return
	}

	person, err := s.people.GetPerson(c.Request.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, people.ErrPersonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		case errors.Is(err, people.ErrInvalidSlug):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person path"})
		default:
			s.logger.Error("Failed to get person", zap.String("slug", slug), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get person"})
		}
		return
	}

	c.JSON(http.StatusOK, newPersonResponse(*person))
}

func (s *Server) listPeople(c *gin.Context) {
	list, err := s.people.ListPeople(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list people", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list people"})
		return
	}

	out := make([]personResponse, 0, len(list))
	for _, p := range list {
		out = append(out, newPersonResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// createPerson accepts the V3 payload, falling back to the V1 {name, bio} payload
func (s *Server) createPerson(c *gin.Context) {
	var req *people.CreatePersonRequest

	var v3 people.PersonV3
	if err := c.ShouldBindBodyWith(&v3, binding.JSON); err == nil {
		req = people.FromV3(v3)
	} else {
		var v1 people.CreateV1
		if errV1 := c.ShouldBindBodyWith(&v1, binding.JSON); errV1 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "detail": err.Error()})
			return
		}
		req = people.FromV1(v1)
	}

	person, err := s.people.CreatePerson(c.Request.Context(), req)
	if err != nil {
		var validationErr *people.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case people.IsConstraintViolation(err):
			c.JSON(http.StatusConflict, gin.H{"error": "Person already exists"})
		default:
			s.logger.Error("Failed to create person", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create person"})
		}
		return
	}

	c.JSON(http.StatusCreated, newPersonResponse(*person))
}

// importRecording stores an uploaded audio or video file with the person
// named by the person_slug form field.
func (s *Server) importRecording(c *gin.Context) {
	slug := c.PostForm("person_slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_slug is required"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file filename"})
		return
	}

	file, err := header.Open()
	if err != nil {
		s.logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	rec, err := s.recordings.Import(c.Request.Context(), slug, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		var validationErr *people.ValidationError
		switch {
		case errors.Is(err, people.ErrPersonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		case errors.Is(err, people.ErrInvalidSlug), errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.logger.Error("Failed to import recording", zap.String("slug", slug), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import recording"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"filename": rec.Filename,
		"path":     rec.Path,
	})
}
