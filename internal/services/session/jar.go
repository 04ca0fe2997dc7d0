package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Jar reads request cookies and writes response cookies. Writes must be
// visible to later reads in the same request.
type Jar interface {
	Get(name string) string
	Set(cookie *fiber.Cookie)
	Clear(cookie *fiber.Cookie)
}

// FiberJar writes to both the response and the request cookie jar of c.
type FiberJar struct {
	c *fiber.Ctx
}

func NewFiberJar(c *fiber.Ctx) *FiberJar {
	return &FiberJar{c: c}
}

func (j *FiberJar) Get(name string) string {
	return j.c.Cookies(name)
}

func (j *FiberJar) Set(cookie *fiber.Cookie) {
	j.c.Cookie(cookie)
	j.c.Request().Header.SetCookie(cookie.Name, cookie.Value)
}

func (j *FiberJar) Clear(cookie *fiber.Cookie) {
	cookie.Value = ""
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	j.c.Cookie(cookie)
	j.c.Request().Header.DelCookie(cookie.Name)
}

// MemoryJar is a Jar backed by maps, for tests.
type MemoryJar struct {
	Request  map[string]string
	Response map[string]*fiber.Cookie
}

func NewMemoryJar() *MemoryJar {
	return &MemoryJar{
		Request:  map[string]string{},
		Response: map[string]*fiber.Cookie{},
	}
}

func (j *MemoryJar) Get(name string) string {
	return j.Request[name]
}

func (j *MemoryJar) Set(cookie *fiber.Cookie) {
	j.Response[cookie.Name] = cookie
	j.Request[cookie.Name] = cookie.Value
}

func (j *MemoryJar) Clear(cookie *fiber.Cookie) {
	cookie.Value = ""
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	j.Response[cookie.Name] = cookie
	delete(j.Request, cookie.Name)
}
