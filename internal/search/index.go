package search

import (
	"context"
	"strings"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index 片库全文索引，只覆盖 title 和 genre
type Index struct {
	index bleve.Index
}

// Document 每个内容在索引中的文档
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Genre string `json:"genre"`
}

// New 创建内存索引
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	// 英文分词 + 词干，查询 "knights" 也能命中 "Knight"
	text := bleve.NewTextFieldMapping()
	text.Analyzer = "en"
	text.Store = false
	text.Index = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("genre", text)

	m.DefaultMapping = doc
	return m
}

// Index 写入或更新文档
func (s *Index) Index(ctx context.Context, doc Document) error {
	return s.index.Index(doc.ID, doc)
}

// IndexBatch 批量写入
func (s *Index) IndexBatch(ctx context.Context, docs []Document) error {
	batch := s.index.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.ID, d); err != nil {
			return err
		}
		if batch.Size() > 1000 {
			if err := s.index.Batch(batch); err != nil {
				return err
			}
			batch = s.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		return s.index.Batch(batch)
	}
	return nil
}

// Search 在 title 和 genre 上做全文匹配，任一词命中即返回，按相关度排序，不分页
func (s *Index) Search(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	total, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	genre := bleve.NewMatchQuery(text)
	genre.SetField("genre")
	q := bleve.NewDisjunctionQuery(title, genre)

	req := bleve.NewSearchRequestOptions(q, int(total), 0, false)
	req.SortBy([]string{"-_score"})

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Delete 删除文档
func (s *Index) Delete(ctx context.Context, id string) error {
	return s.index.Delete(id)
}

// Close 关闭索引
func (s *Index) Close() error {
	return s.index.Close()
}
