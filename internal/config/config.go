package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type TokenConfig struct {
	Symbol   string `toml:"symbol"`
	Contract string `toml:"contract"` // contract address / mint
	Decimals uint   `toml:"decimals"` // 0..36
}

type EvmWatch struct {
	Chain                 string        `toml:"chain"` // BSC / BASE
	RpcUrl                string        `toml:"rpc_url"`
	PollSeconds           uint          `toml:"poll_seconds"`
	ConfirmThreshold      uint          `toml:"confirm_threshold"`
	StartupLookbackBlocks uint64        `toml:"startup_lookback_blocks"`
	ScanStep              uint64        `toml:"scan_step"`
	AddressChunk          int           `toml:"address_chunk"`
	Tokens                []TokenConfig `toml:"tokens"`
}

type SolWatch struct {
	RpcUrl           string        `toml:"rpc_url"`
	PollSeconds      uint          `toml:"poll_seconds"`
	ConfirmThreshold uint          `toml:"confirm_threshold"`
	SignatureLimit   int           `toml:"signature_limit"`
	ScanTargetLimit  int           `toml:"scan_target_limit"`
	Tokens           []TokenConfig `toml:"tokens"` // mints
}

type TronWatch struct {
	FullHost          string        `toml:"full_host"`
	PollSeconds       uint          `toml:"poll_seconds"`
	ConfirmThreshold  uint          `toml:"confirm_threshold"`
	EventLimit        int           `toml:"event_limit"`
	StartupLookbackMs int64         `toml:"startup_lookback_ms"`
	Tokens            []TokenConfig `toml:"tokens"`
	ApiKey            string        `toml:"-"` // SECRETS/tron-api-key.txt, optional
}

type EvmDispatch struct {
	ProductID     string `toml:"product_id"`
	RpcUrl        string `toml:"rpc_url"`
	KeyFile       string `toml:"key_file"` // hex secp256k1 key under SECRETS
	UnitAmountWei string `toml:"unit_amount_wei"`
	PrivateKey    string `toml:"-"`
}

type SolClusterDispatch struct {
	Cluster      string `toml:"cluster"` // devnet / testnet
	RpcUrl       string `toml:"rpc_url"`
	WsUrl        string `toml:"ws_url"`
	KeyFile      string `toml:"key_file"` // base58 private key under SECRETS
	UnitLamports uint64 `toml:"unit_lamports"`
	PrivateKey   string `toml:"-"`
}

type SolDispatch struct {
	PollSeconds uint                 `toml:"poll_seconds"`
	Clusters    []SolClusterDispatch `toml:"clusters"`
}

type TonDispatch struct {
	ConfigUrl      string `toml:"config_url"` // liteserver global config json
	PollSeconds    uint   `toml:"poll_seconds"`
	SeedFile       string `toml:"seed_file"` // 24 words under SECRETS
	UnitAmountNano uint64 `toml:"unit_amount_nano"`
	Seed           string `toml:"-"`
}

type SuiDispatch struct {
	RpcUrl         string `toml:"rpc_url"`
	PollSeconds    uint   `toml:"poll_seconds"`
	KeyFile        string `toml:"key_file"` // hex ed25519 seed under SECRETS
	UnitAmountMist uint64 `toml:"unit_amount_mist"`
	GasBudget      uint64 `toml:"gas_budget"`
	PrivateKey     string `toml:"-"`
}

type Config struct {
	DB *gorm.DB `toml:"-"`

	Prod_env bool

	AdminToken string `toml:"-"` // SECRETS/admin-token.txt

	Testing struct {
		Enabled bool
	} `toml:"testing"`

	Postgres struct {
		Host     string
		User     string
		Password string
		Db_name  string
		Port     uint16
		Ssl_mode string
	}

	Nats struct {
		Servers     string   `toml:"-"`
		TomlServers []string `toml:"servers"`
	}

	Api struct {
		Ipv4 string
	} `toml:"api"`

	Order struct {
		ExpiryMinutes      uint `toml:"expiry_minutes"`
		RateLimitPerMinute uint `toml:"ip_rate_limit_per_minute"`
		DispatchBatch      int  `toml:"dispatch_batch"`
		SweepSeconds       uint `toml:"sweep_seconds"`
	} `toml:"order"`

	Watch struct {
		Evm  []EvmWatch `toml:"evm"`
		Sol  *SolWatch  `toml:"sol"`
		Tron *TronWatch `toml:"tron"`
	} `toml:"watch"`

	Dispatch struct {
		Evm []EvmDispatch `toml:"evm"`
		Sol *SolDispatch  `toml:"sol"`
		Ton *TonDispatch  `toml:"ton"`
		Sui *SuiDispatch  `toml:"sui"`
	} `toml:"dispatch"`
}

func ReadConfig() *Config {
	byteConfig, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	var config Config
	_, err = toml.Decode(string(byteConfig), &config)
	if err != nil {
		panic(err)
	}

	if config.Postgres.Host == "" || config.Postgres.Db_name == "" {
		panic("config: postgres section is required")
	}

	config.AdminToken = ReadSecret("admin-token.txt")

	if len(config.Nats.TomlServers) > 0 {
		user := ReadSecret("nats-user.txt")
		pass := ReadSecret("nats-password.txt")

		var formatedServers string
		for _, x := range config.Nats.TomlServers {
			formatedServers += fmt.Sprintf("nats://%s:%s@%s,", user, pass, x)
		}
		config.Nats.Servers = formatedServers
	}

	if config.Order.ExpiryMinutes == 0 {
		config.Order.ExpiryMinutes = 10
	}
	if config.Order.RateLimitPerMinute == 0 {
		config.Order.RateLimitPerMinute = 1
	}
	if config.Order.DispatchBatch == 0 {
		config.Order.DispatchBatch = 30
	}
	if config.Order.SweepSeconds == 0 {
		config.Order.SweepSeconds = 30
	}

	if config.Prod_env && config.Testing.Enabled {
		panic("cannot use testing in prod")
	}

	config.loadChainSecrets()

	return &config
}

// ReadSecret reads one secret file from the SECRETS dir, trimmed.
func ReadSecret(name string) string {
	b, err := os.ReadFile(os.Getenv("SECRETS") + "/" + name)
	if err != nil {
		panic("read secret " + name + ": " + err.Error())
	}
	return strings.TrimSpace(string(b))
}

func readSecretOptional(name string) string {
	b, err := os.ReadFile(os.Getenv("SECRETS") + "/" + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (c *Config) loadChainSecrets() {
	for i := range c.Dispatch.Evm {
		if c.Dispatch.Evm[i].KeyFile != "" {
			c.Dispatch.Evm[i].PrivateKey = readSecretOptional(c.Dispatch.Evm[i].KeyFile)
		}
	}
	if c.Dispatch.Sol != nil {
		for i := range c.Dispatch.Sol.Clusters {
			if c.Dispatch.Sol.Clusters[i].KeyFile != "" {
				c.Dispatch.Sol.Clusters[i].PrivateKey = readSecretOptional(c.Dispatch.Sol.Clusters[i].KeyFile)
			}
		}
	}
	if c.Dispatch.Ton != nil && c.Dispatch.Ton.SeedFile != "" {
		c.Dispatch.Ton.Seed = readSecretOptional(c.Dispatch.Ton.SeedFile)
	}
	if c.Dispatch.Sui != nil && c.Dispatch.Sui.KeyFile != "" {
		c.Dispatch.Sui.PrivateKey = readSecretOptional(c.Dispatch.Sui.KeyFile)
	}
	if c.Watch.Tron != nil {
		c.Watch.Tron.ApiKey = readSecretOptional("tron-api-key.txt")
	}
}

// per-chain validation, run once at watcher/dispatcher startup. a chain
// failing validation is skipped, not fatal.

func (w *EvmWatch) Validate() error {
	if domain.StrToChain(w.Chain) == domain.CHAIN_NONE || !domain.StrToChain(w.Chain).IsEvm() {
		return fmt.Errorf("evm watch: unknown chain %q", w.Chain)
	}
	if w.RpcUrl == "" {
		return fmt.Errorf("evm watch %s: rpc_url is required", w.Chain)
	}
	if len(w.Tokens) == 0 {
		return fmt.Errorf("evm watch %s: at least one token is required", w.Chain)
	}
	for _, t := range w.Tokens {
		if t.Symbol == "" || t.Contract == "" {
			return fmt.Errorf("evm watch %s: token symbol and contract are required", w.Chain)
		}
		if t.Decimals > domain.MaxTokenDecimals {
			return fmt.Errorf("evm watch %s: invalid decimals for %s", w.Chain, t.Symbol)
		}
	}
	if w.PollSeconds == 0 {
		w.PollSeconds = 5
	}
	if w.ConfirmThreshold == 0 {
		w.ConfirmThreshold = 12
	}
	if w.StartupLookbackBlocks == 0 {
		w.StartupLookbackBlocks = 1200
	}
	if w.ScanStep == 0 {
		w.ScanStep = 20
	}
	if w.AddressChunk == 0 {
		w.AddressChunk = 10
	}
	return nil
}

func (w *SolWatch) Validate() error {
	if w.RpcUrl == "" {
		return fmt.Errorf("sol watch: rpc_url is required")
	}
	if len(w.Tokens) == 0 {
		return fmt.Errorf("sol watch: at least one mint is required")
	}
	for _, t := range w.Tokens {
		if t.Symbol == "" || t.Contract == "" {
			return fmt.Errorf("sol watch: token symbol and mint are required")
		}
	}
	if w.PollSeconds == 0 {
		w.PollSeconds = 7
	}
	if w.ConfirmThreshold == 0 {
		w.ConfirmThreshold = 32
	}
	if w.SignatureLimit == 0 {
		w.SignatureLimit = 10
	}
	if w.ScanTargetLimit == 0 {
		w.ScanTargetLimit = 120
	}
	return nil
}

func (w *TronWatch) Validate() error {
	if w.FullHost == "" {
		return fmt.Errorf("tron watch: full_host is required")
	}
	if len(w.Tokens) == 0 {
		return fmt.Errorf("tron watch: at least one token is required")
	}
	if w.PollSeconds == 0 {
		w.PollSeconds = 12
	}
	if w.ConfirmThreshold == 0 {
		w.ConfirmThreshold = 20
	}
	if w.EventLimit == 0 {
		w.EventLimit = 120
	}
	if w.StartupLookbackMs == 0 {
		w.StartupLookbackMs = 10 * 60 * 1000
	}
	return nil
}

func (d *EvmDispatch) Validate() error {
	if d.ProductID == "" {
		return fmt.Errorf("evm dispatch: product_id is required")
	}
	if d.RpcUrl == "" || d.PrivateKey == "" || d.UnitAmountWei == "" {
		return fmt.Errorf("evm dispatch %s: rpc_url, key and unit_amount_wei are required", d.ProductID)
	}
	return nil
}

func (d *SolDispatch) Validate() error {
	if len(d.Clusters) == 0 {
		return fmt.Errorf("sol dispatch: at least one cluster is required")
	}
	for _, c := range d.Clusters {
		if c.Cluster != "devnet" && c.Cluster != "testnet" {
			return fmt.Errorf("sol dispatch: unknown cluster %q", c.Cluster)
		}
		if c.RpcUrl == "" || c.WsUrl == "" || c.PrivateKey == "" || c.UnitLamports == 0 {
			return fmt.Errorf("sol dispatch %s: rpc_url, ws_url, key and unit_lamports are required", c.Cluster)
		}
	}
	if d.PollSeconds == 0 {
		d.PollSeconds = 7
	}
	return nil
}

func (d *TonDispatch) Validate() error {
	if d.ConfigUrl == "" || d.Seed == "" || d.UnitAmountNano == 0 {
		return fmt.Errorf("ton dispatch: config_url, seed and unit_amount_nano are required")
	}
	if len(strings.Fields(d.Seed)) != 24 {
		return fmt.Errorf("ton dispatch: seed must contain exactly 24 words")
	}
	if d.PollSeconds == 0 {
		d.PollSeconds = 6
	}
	return nil
}

func (d *SuiDispatch) Validate() error {
	if d.RpcUrl == "" || d.PrivateKey == "" || d.UnitAmountMist == 0 || d.GasBudget == 0 {
		return fmt.Errorf("sui dispatch: rpc_url, key, unit_amount_mist and gas_budget are required")
	}
	if d.PollSeconds == 0 {
		d.PollSeconds = 5
	}
	return nil
}
