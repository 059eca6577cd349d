package router

import "github.com/gin-gonic/gin"

// Registrar is implemented by every module that mounts routes on the engine.
type Registrar interface{ Register(r *gin.Engine) }

var registrars []Registrar

// Register adds modules to the global registry.
func Register(rs ...Registrar) { registrars = append(registrars, rs...) }

// Mount mounts every registered module.
func Mount(r *gin.Engine) {
	for _, rg := range registrars {
		rg.Register(r)
	}
}
