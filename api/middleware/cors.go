package middleware

import (
    "github.com/gin-contrib/cors"
    "github.com/gin-gonic/gin"
)

func CORS() gin.HandlerFunc {
    config := cors.DefaultConfig()
    config.AllowOrigins = []string{"*"}
    config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
    config.AllowHeaders = []string{"Origin", "Content-Type", RequestIDHeader}
    config.ExposeHeaders = []string{RequestIDHeader, "Content-Disposition"}

    return cors.New(config)
}
