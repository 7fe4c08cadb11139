// Package tree defines the document tree data model shared by the tree
// client and the browser controller.
//
// Items are read-only snapshots of backend state. They are replaced wholesale
// on every navigation or search and never patched field by field.
package tree

// RootID is the id of the top-level folder.
const RootID = "root"

// RootName is the display name of the top-level folder.
const RootName = "My files"

// Type is the backend's item type discriminator.
type Type string

const (
	TypeFolder   Type = "folder"
	TypeNotebook Type = "notebook"
	TypePDF      Type = "pdf"
	TypeEPUB     Type = "epub"
)

// Kind partitions items into folders and documents.
type Kind int

const (
	KindDocument Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "document"
}

// PathEntry is one element of a breadcrumb path.
type PathEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is the metadata of a folder or document.
//
// Folder-only fields: ItemCount, TotalSize.
// Document-only fields: CurrentPage, PageCount, FileSize, PDFSize, Thumbnail.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`

	DateCreated  Timestamp `json:"dateCreated"`
	LastModified Timestamp `json:"lastModified"`
	LastOpened   Timestamp `json:"lastOpened"`

	ItemCount int   `json:"itemCount,omitempty"`
	TotalSize int64 `json:"totalSize,omitempty"`

	CurrentPage int    `json:"currentPage,omitempty"`
	PageCount   int    `json:"pageCount,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	PDFSize     int64  `json:"pdfSize,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`

	// Path is the breadcrumb from the root to this item, inclusive.
	// Only populated by single-item lookups.
	Path []PathEntry `json:"path,omitempty"`
}

// Kind reports whether the item is a folder or a document.
func (i *Item) Kind() Kind {
	if i.Type == TypeFolder {
		return KindFolder
	}
	return KindDocument
}

// IsFolder is shorthand for Kind() == KindFolder.
func (i *Item) IsFolder() bool {
	return i.Kind() == KindFolder
}

// Size returns the size used for ordering. Folders report TotalSize;
// documents report FileSize, falling back to PDFSize.
func (i *Item) Size() int64 {
	if i.IsFolder() {
		return i.TotalSize
	}
	if i.FileSize > 0 {
		return i.FileSize
	}
	return i.PDFSize
}

// Pages returns the item count for folders and the page count for documents.
func (i *Item) Pages() int {
	if i.IsFolder() {
		return i.ItemCount
	}
	return i.PageCount
}

// Match is a content hit inside a document. Page is 1-indexed.
type Match struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchResult is a document returned by a search query.
type SearchResult struct {
	Item

	Hits       int     `json:"hits"`
	TitleMatch bool    `json:"titleMatch"`
	Matches    []Match `json:"matches"`
}

// SearchResponse is the body returned by the search endpoint.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Generation is the backend change counter. Only compared for inequality.
type Generation int64
