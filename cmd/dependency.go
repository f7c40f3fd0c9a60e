package cmd

import (
	"accounts/domain"
	"accounts/infrastructure/dbhandler"
	"accounts/infrastructure/hostclient"
	"accounts/infrastructure/memstore"
	"accounts/infrastructure/registrar"
	"accounts/interface/exporter"
	"accounts/interface/repository"
	"accounts/usecase"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func defaultDependencyInject() {
	var err error

	var store usecase.Store
	var outbox usecase.Outbox

	dbURI := domain.GetDbUri()
	if dbURI == "" {
		log.Printf("⚠️ service_db_uri is empty, keeping state in memory")
		mem := memstore.New()
		store, outbox = mem, mem
	} else {
		dbPool, err = sql.Open("postgres", dbURI)
		if err != nil {
			log.Fatal(err)
		}
		dbPool.SetMaxOpenConns(20)
		dbPool.SetMaxIdleConns(5)
		dbPool.SetConnMaxIdleTime(1 * time.Minute)
		dbPool.SetConnMaxLifetime(4 * time.Hour)

		dbHandler := dbhandler.DBHandler{DB: dbPool}
		accountsRepository := repository.NewAccountsRepository(dbHandler)
		store, outbox = accountsRepository, accountsRepository.Outbox()
	}

	staticRegistrar, err := registrar.FromConfig()
	if err != nil {
		log.Fatalf("Unable to load registrar settings - %v\n", err.Error())
	}
	hostClient := hostclient.New(domain.GetHostGatewayUrl())

	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	exporter.Init(registry)

	accountsInteractor = usecase.NewAccountsInteractor(store, staticRegistrar, staticRegistrar, hostClient, domain.GetContractAddress())
	messengerInteractor = usecase.NewMessengerInteractor(outbox, hostClient, accountsInteractor, domain.GetDeliverRate(), domain.GetMaxRetry(), domain.GetStaleAfter())

	if _, err = accountsInteractor.Instantiate(domain.GetOwnerAddress(), domain.GetRegistrarAddress()); err != nil {
		log.Fatalf("Unable to instantiate contract config - %v\n", err.Error())
	}
}

var dbPool *sql.DB
var registry *prometheus.Registry
var accountsInteractor *usecase.AccountsInteractor
var messengerInteractor *usecase.MessengerInteractor
