package main

import (
	"fmt"

	stackgin "github.com/fwojciec/stackdoc/gin"
	"github.com/gin-gonic/gin"
)

// Run executes the serve command and blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	gin.SetMode(gin.ReleaseMode)

	srv := stackgin.NewServer(stackgin.Config{
		Addr:           c.Addr,
		MaxBodyBytes:   c.MaxBody,
		AllowedOrigins: c.Origins,
	}, &stackgin.API{
		Extractor: deps.Extractor,
		Scraper:   deps.Scraper,
		Parser:    deps.Parser,
		Projects:  deps.Projects,
		Documents: deps.Documents,
		Pipeline:  deps.Pipeline,
		Sessions:  deps.Sessions,
		Hub:       deps.Hub,
		Logger:    deps.Logger,
	})

	if err := srv.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", srv.Addr())

	<-deps.Ctx.Done()

	deps.Sessions.CloseAll()
	return srv.Close()
}
