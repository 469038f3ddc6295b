package premium

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	x402gin "github.com/x402-stacks/x402-stacks-go/gin"
)

// Service serves the premium dataset: a paid search endpoint and an
// unguarded dataset contribution endpoint.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	if store == nil {
		store = NewMemoryStore(nil)
	}
	return &Service{store: store}
}

func (s *Service) Store() Store { return s.store }

// RegisterRoutes mounts the premium endpoints. The payment middleware
// guards /search only; /datasets stays open so anyone can contribute.
func (s *Service) RegisterRoutes(rg gin.IRouter, paywall gin.HandlerFunc) {
	rg.GET("/search", paywall, s.handleSearch)
	rg.POST("/datasets", s.handleCreateDataset)
}

func (s *Service) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	results := s.store.Search(query)

	payment := gin.H{}
	if proof := x402gin.GetPayment(c); proof != nil {
		payment["txid"] = proof.TxID
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"paid":    true,
		"payment": payment,
	})
}

type createDatasetRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Creator string `json:"creator"`
}

func (s *Service) handleCreateDataset(c *gin.Context) {
	var req createDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	req.Snippet = strings.TrimSpace(req.Snippet)
	req.Creator = strings.TrimSpace(req.Creator)

	if req.Title == "" || req.URL == "" || req.Snippet == "" || req.Creator == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Missing title, url, snippet, or creator",
		})
		return
	}

	item := s.store.Append(Item{
		Title:   req.Title,
		URL:     req.URL,
		Snippet: req.Snippet,
		Creator: req.Creator,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "item": item})
}
