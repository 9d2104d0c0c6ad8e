package result

import (
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/util"
)

type (
	// Block is a block result, only the header and chunk headers are kept.
	Block struct {
		Author string        `json:"author"`
		Header BlockHeader   `json:"header"`
		Chunks []ChunkHeader `json:"chunks"`
	}

	// BlockHeader is a block header view.
	BlockHeader struct {
		Height           uint64          `json:"height"`
		PrevHeight       *uint64         `json:"prev_height"`
		Hash             hash.CryptoHash `json:"hash"`
		PrevHash         hash.CryptoHash `json:"prev_hash"`
		EpochID          hash.CryptoHash `json:"epoch_id"`
		NextEpochID      hash.CryptoHash `json:"next_epoch_id"`
		Timestamp        uint64          `json:"timestamp"`
		TimestampNanosec string          `json:"timestamp_nanosec"`
		ChunksIncluded   uint64          `json:"chunks_included"`
		GasPrice         util.Balance    `json:"gas_price"`
		TotalSupply      util.Balance    `json:"total_supply"`
		LastFinalBlock   hash.CryptoHash `json:"last_final_block"`
		LatestProtocol   uint32          `json:"latest_protocol_version"`
	}

	// ChunkHeader is a chunk header view.
	ChunkHeader struct {
		ChunkHash      hash.CryptoHash `json:"chunk_hash"`
		HeightCreated  uint64          `json:"height_created"`
		HeightIncluded uint64          `json:"height_included"`
		ShardID        uint64          `json:"shard_id"`
		GasUsed        util.Gas        `json:"gas_used"`
		GasLimit       util.Gas        `json:"gas_limit"`
	}

	// GasPrice is a gas_price result.
	GasPrice struct {
		GasPrice util.Balance `json:"gas_price"`
	}

	// Status is a status result.
	Status struct {
		Version               NodeVersion `json:"version"`
		ChainID               string      `json:"chain_id"`
		ProtocolVersion       uint32      `json:"protocol_version"`
		LatestProtocolVersion uint32      `json:"latest_protocol_version"`
		RPCAddr               string      `json:"rpc_addr"`
		Validators            []Validator `json:"validators"`
		SyncInfo              SyncInfo    `json:"sync_info"`
	}

	// NodeVersion is the node software version.
	NodeVersion struct {
		Version string `json:"version"`
		Build   string `json:"build"`
	}

	// Validator is a current validator.
	Validator struct {
		AccountID string `json:"account_id"`
		IsSlashed bool   `json:"is_slashed"`
	}

	// SyncInfo is the node synchronization state.
	SyncInfo struct {
		LatestBlockHash   hash.CryptoHash `json:"latest_block_hash"`
		LatestBlockHeight uint64          `json:"latest_block_height"`
		LatestStateRoot   hash.CryptoHash `json:"latest_state_root"`
		LatestBlockTime   string          `json:"latest_block_time"`
		Syncing           bool            `json:"syncing"`
	}
)
