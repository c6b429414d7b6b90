package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// 模块可选择实现其中一个或多个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// PublicAdminModule mounts routes that precede admin authentication (login).
type PublicAdminModule interface{ MountPublic(*gin.RouterGroup) }

// 可选：控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

// Registry collects handler modules and mounts them per engine.
type Registry struct {
	mods []any
}

// Register 根据实现的接口分发到 API/Admin
func (r *Registry) Register(mods ...any) {
	r.mods = append(r.mods, mods...)
}

func (r *Registry) MountAPI(api *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if am, ok := m.(APIModule); ok {
			am.MountAPI(api)
		}
	}
}

func (r *Registry) MountAdmin(public, guarded *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if pm, ok := m.(PublicAdminModule); ok {
			pm.MountPublic(public)
		}
		if am, ok := m.(AdminModule); ok {
			am.MountAdmin(guarded)
		}
	}
}

func (r *Registry) sorted() []any {
	mods := append([]any(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	return mods
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
