package router

import (
	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/interfaces/http/middleware"
)

// RegisterV1Routes 注册 v1 版本路由，generateLimit 只作用于写作生成接口
func RegisterV1Routes(v1 *gin.RouterGroup, h *RouterHandlers, generateLimit gin.HandlerFunc) {
	// 书籍
	books := v1.Group("/books")
	books.Use(middleware.BookContext())
	{
		books.GET("", h.Book.ListBooks)
		books.POST("", h.Book.CreateBook)
		books.GET("/:bid", h.Book.GetBook)
		books.DELETE("/:bid", h.Book.DeleteBook)

		// 世界观
		books.GET("/:bid/worldview", h.Book.GetWorldview)
		books.PUT("/:bid/worldview", h.Book.SaveWorldview)
		books.DELETE("/:bid/worldview", h.Book.DeleteWorldview)

		// 书籍下的角色与章节
		books.GET("/:bid/characters", h.Character.ListCharacters)
		books.POST("/:bid/characters", h.Character.CreateCharacter)
		books.GET("/:bid/chapters", h.Chapter.ListChapters)
		books.POST("/:bid/chapters", h.Chapter.CreateChapter)

		// 检索调试
		books.POST("/:bid/search", h.Search.Search)
	}

	characters := v1.Group("/characters")
	{
		characters.PUT("/:cid", h.Character.UpdateCharacter)
		characters.DELETE("/:cid", h.Character.DeleteCharacter)
	}

	chapters := v1.Group("/chapters")
	{
		chapters.DELETE("/:chid", h.Chapter.DeleteChapter)
	}

	writing := v1.Group("/writing")
	{
		writing.POST("/generate", generateLimit, h.Writing.Generate)
	}

	ai := v1.Group("/ai")
	{
		ai.POST("/test", h.AI.TestChat)
		ai.POST("/test-embedding", h.AI.TestEmbedding)
	}
}
