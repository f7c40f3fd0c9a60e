package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	ErrorNoContractAddress  = fmt.Errorf("contract_address must be defined")
	ErrorNoOwnerAddress     = fmt.Errorf("owner_address must be defined")
	ErrorNoRegistrarAddress = fmt.Errorf("registrar_address must be defined")

	ErrorInvalidDeliverInterval = fmt.Errorf("invalid time interval for deliver process")
	ErrorInvalidDeliverRate     = fmt.Errorf("deliver_rate must be a positive number")
	ErrorInvalidStaleAfter      = fmt.Errorf("deliver_stale_after must be a duration longer than deliver_interval")
	ErrorInvalidLogLevel        = fmt.Errorf("invalid log level")
	ErrorInvalidPercentage      = fmt.Errorf("invalid percentage in registrar settings")
	ErrorInvalidStrategies      = fmt.Errorf("invalid registrar strategies")
	ErrorInvalidIndexFunds      = fmt.Errorf("invalid index funds")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri         string
	listenAddress string

	contractAddress  string
	ownerAddress     string
	registrarAddress string

	hostGatewayUrl  string
	deliverInterval time.Duration
	deliverRate     float64
	maxRetry        int
	staleAfter      time.Duration

	registrarConfig RegistrarConfig
	strategies      []StrategyParams
	networks        map[string]NetworkInfo
	indexFunds      []IndexFund
)

func init() {
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("deliver_interval", "5s")
	viper.SetDefault("deliver_rate", 10)
	viper.SetDefault("max_retry", 5)
	viper.SetDefault("deliver_stale_after", "2m")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("registrar.withdraw_fee_charity", "0")
	viper.SetDefault("registrar.withdraw_fee_normal", "0")
	viper.SetDefault("registrar.split_to_liquid.min", "0")
	viper.SetDefault("registrar.split_to_liquid.max", "1")
	viper.SetDefault("registrar.split_to_liquid.default", "0.5")
}

func ReadConfig(filePath string) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Failed reading config file: %v\n", err.Error())
	}

	err := initializeVariables()
	if err != nil {
		log.Fatalf("Configuration error - %v\n", err.Error())
	}
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	level, err := log.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return ErrorInvalidLogLevel
	}
	log.SetLevel(level)

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")
	listenAddress = strings.TrimSpace(viper.GetString("listen_address"))

	// Addresses
	contractAddress = strings.TrimSpace(viper.GetString("contract_address"))
	if contractAddress == "" {
		return ErrorNoContractAddress
	}
	ownerAddress = strings.TrimSpace(viper.GetString("owner_address"))
	if ownerAddress == "" {
		return ErrorNoOwnerAddress
	}
	registrarAddress = strings.TrimSpace(viper.GetString("registrar_address"))
	if registrarAddress == "" {
		return ErrorNoRegistrarAddress
	}

	//---------------------------------------------------------------
	// delivery of outbound messages
	hostGatewayUrl = TrailingSlashRE.ReplaceAllString(viper.GetString("host_gateway_url"), "")

	strValue := viper.GetString("deliver_interval")
	deliverInterval, err = time.ParseDuration(strValue)
	if err != nil {
		return ErrorInvalidDeliverInterval
	}

	deliverRate = viper.GetFloat64("deliver_rate")
	if deliverRate <= 0 {
		return ErrorInvalidDeliverRate
	}
	maxRetry = viper.GetInt("max_retry")

	// messages left ongoing longer than this are picked up again
	staleAfter, err = time.ParseDuration(viper.GetString("deliver_stale_after"))
	if err != nil || staleAfter <= deliverInterval {
		return ErrorInvalidStaleAfter
	}

	//---------------------------------------------------------------
	// static registrar
	registrarConfig, err = readRegistrarConfig()
	if err != nil {
		return err
	}

	strategies = make([]StrategyParams, 0)
	if err = viper.UnmarshalKey("registrar.strategies", &strategies); err != nil {
		return fmt.Errorf("%w: %v", ErrorInvalidStrategies, err)
	}

	networks = make(map[string]NetworkInfo)
	if err = viper.UnmarshalKey("registrar.networks", &networks); err != nil {
		return fmt.Errorf("%w: %v", ErrorInvalidStrategies, err)
	}

	indexFunds = make([]IndexFund, 0)
	if err = viper.UnmarshalKey("index_funds", &indexFunds); err != nil {
		return fmt.Errorf("%w: %v", ErrorInvalidIndexFunds, err)
	}

	return nil
}

func readRegistrarConfig() (RegistrarConfig, error) {
	c := RegistrarConfig{
		Treasury:         strings.TrimSpace(viper.GetString("registrar.treasury")),
		IndexFundAddress: strings.TrimSpace(viper.GetString("registrar.index_fund_address")),
		AcceptedTokens: AcceptedTokens{
			Native: viper.GetStringSlice("registrar.accepted_tokens.native"),
			Cw20:   viper.GetStringSlice("registrar.accepted_tokens.cw20"),
		},
	}

	values := []struct {
		key    string
		target *math.LegacyDec
	}{
		{"registrar.withdraw_fee_charity", &c.WithdrawFeeCharity},
		{"registrar.withdraw_fee_normal", &c.WithdrawFeeNormal},
		{"registrar.split_to_liquid.min", &c.SplitToLiquid.Min},
		{"registrar.split_to_liquid.max", &c.SplitToLiquid.Max},
		{"registrar.split_to_liquid.default", &c.SplitToLiquid.Default},
	}
	for _, v := range values {
		dec, err := math.LegacyNewDecFromStr(viper.GetString(v.key))
		if err != nil {
			return c, fmt.Errorf("%w: %v - %v", ErrorInvalidPercentage, v.key, err)
		}
		*v.target = dec
	}

	if err := c.SplitToLiquid.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetListenAddress() string {
	return listenAddress
}

func GetContractAddress() string {
	return contractAddress
}

func GetOwnerAddress() string {
	return ownerAddress
}

func GetRegistrarAddress() string {
	return registrarAddress
}

func GetHostGatewayUrl() string {
	return hostGatewayUrl
}

func GetDeliverInterval() time.Duration {
	return deliverInterval
}

func GetDeliverRate() float64 {
	return deliverRate
}

func GetMaxRetry() int {
	return maxRetry
}

func GetStaleAfter() time.Duration {
	return staleAfter
}

//-------------------------------------------------------------------
// Static registrar values

func GetRegistrarConfig() RegistrarConfig {
	return registrarConfig
}

func GetStrategies() []StrategyParams {
	return strategies
}

func GetNetworks() map[string]NetworkInfo {
	return networks
}

func GetIndexFunds() []IndexFund {
	return indexFunds
}
