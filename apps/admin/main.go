package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/user"
	logsvc "github.com/trezcool/sunrise/services/logger"
	"github.com/trezcool/sunrise/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// migrations are run by the migrate command only
	backend, err := database.Setup(context.Background(), conf, schema.Default, false)
	if err != nil {
		logger.Fatal("setting up database", err)
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	cli := commandLine{
		conf:       conf,
		db:         backend.DB,
		store:      backend.Store,
		reg:        schema.Default,
		usrSvc:     user.NewService(backend.Users, validate),
		sessions:   session.NewFileStore(conf.Session.File),
		scanner:    attendance.NewScanner(backend.Store, conf.School.Location()),
		translator: translator,
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}

	err = cli.run(os.Args[1:])
	if cerr := backend.Close(); cerr != nil {
		logger.Error("closing database", cerr)
	}
	if err != nil {
		if err != errHelp {
			cli.report(err)
		}
		os.Exit(1)
	}
}
