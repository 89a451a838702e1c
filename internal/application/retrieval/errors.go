package retrieval

import "errors"

var (
	// errBookMissing 书籍不存在，检索降级为空结果
	errBookMissing = errors.New("book not found")
)
