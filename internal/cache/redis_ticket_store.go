package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/repository"
	apperrors "go-raffle-api/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

const (
	// 票池大小，初始化時寫入後不再變動
	poolSizeKey = "raffle:pool:size"
	// 已售出票號 hash：field 為票號，value 為 soldEntry JSON
	soldKey = "raffle:sold"
)

// soldEntry 已售出票的附帶資訊
type soldEntry struct {
	Buyer  string    `json:"buyer"`
	SoldAt time.Time `json:"soldAt"`
}

// RedisTicketStore 以 Redis 為後端的票池。
// 批次售出使用 Lua 腳本確保原子性：先全部檢查再全部寫入。
type RedisTicketStore struct {
	client *redis.Client
}

var _ repository.TicketRepository = (*RedisTicketStore)(nil)

func NewRedisTicketStore(client *redis.Client) *RedisTicketStore {
	return &RedisTicketStore{
		client: client,
	}
}

func (s *RedisTicketStore) EnsurePool(ctx context.Context, size int) error {
	if size <= 0 {
		return apperrors.ErrInvalidInput
	}

	// 已初始化過則不動，避免重啟時覆蓋現有票池
	return s.client.SetNX(ctx, poolSizeKey, size, 0).Err()
}

func (s *RedisTicketStore) poolSize(ctx context.Context) (int, error) {
	size, err := s.client.Get(ctx, poolSizeKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return size, err
}

func (s *RedisTicketStore) FindByNumbers(ctx context.Context, numbers []int) ([]*model.Ticket, error) {
	if len(numbers) == 0 {
		return []*model.Ticket{}, nil
	}

	size, err := s.poolSize(ctx)
	if err != nil {
		return nil, err
	}

	// 池內的票號才查售出狀態，池外的直接略過
	inPool := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n >= 1 && n <= size {
			inPool = append(inPool, n)
		}
	}

	if len(inPool) == 0 {
		return []*model.Ticket{}, nil
	}

	fields := make([]string, len(inPool))
	for i, n := range inPool {
		fields[i] = strconv.Itoa(n)
	}

	values, err := s.client.HMGet(ctx, soldKey, fields...).Result()
	if err != nil {
		return nil, err
	}

	tickets := make([]*model.Ticket, 0, len(inPool))
	for i, n := range inPool {
		ticket := &model.Ticket{Number: n}
		if values[i] != nil {
			raw, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected sold entry type for ticket %d", n)
			}
			var entry soldEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				return nil, fmt.Errorf("invalid sold entry for ticket %d: %v", n, err)
			}
			ticket.MarkSold(entry.Buyer, entry.SoldAt)
		}
		tickets = append(tickets, ticket)
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Number < tickets[j].Number })

	return tickets, nil
}

func (s *RedisTicketStore) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	size, err := s.poolSize(ctx)
	if err != nil {
		return nil, err
	}

	soldEntries, err := s.client.HGetAll(ctx, soldKey).Result()
	if err != nil {
		return nil, err
	}

	tickets := make([]*model.Ticket, 0, size)
	for n := 1; n <= size; n++ {
		ticket := &model.Ticket{Number: n}
		if raw, ok := soldEntries[strconv.Itoa(n)]; ok {
			var entry soldEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				return nil, fmt.Errorf("invalid sold entry for ticket %d: %v", n, err)
			}
			ticket.MarkSold(entry.Buyer, entry.SoldAt)
		}
		if filter.Matches(ticket) {
			tickets = append(tickets, ticket)
		}
	}

	return tickets, nil
}

func (s *RedisTicketStore) Count(ctx context.Context, filter model.TicketFilter) (int, error) {
	size, err := s.poolSize(ctx)
	if err != nil {
		return 0, err
	}

	sold, err := s.client.HLen(ctx, soldKey).Result()
	if err != nil {
		return 0, err
	}

	switch filter {
	case model.FilterSold:
		return int(sold), nil
	case model.FilterAvailable:
		return size - int(sold), nil
	default:
		return size, nil
	}
}

/*
*

	批次售出 (使用Lua腳本確保原子性)
	1. 檢查票號是否都在池內
	2. 檢查票號是否都未售出
	3. 任一檢查失敗即整批放棄，否則全部寫入
*/
func (s *RedisTicketStore) CommitSale(ctx context.Context, numbers []int, buyer string, soldAt time.Time) error {
	if len(numbers) == 0 {
		return apperrors.ErrInvalidInput
	}

	payload, err := json.Marshal(soldEntry{Buyer: buyer, SoldAt: soldAt})
	if err != nil {
		return err
	}

	script := `
		-- 1. 取得參數
		local size_key = KEYS[1]
		local sold_key = KEYS[2]
		local payload = ARGV[1]

		-- 2. 檢查票池是否已初始化
		local size = redis.call('GET', size_key)
		if not size then
			return {-3}
		end
		size = tonumber(size)

		-- 3. 檢查票號是否都在池內
		local unknown = {}
		for i = 2, #ARGV do
			local number = tonumber(ARGV[i])
			if number < 1 or number > size then
				table.insert(unknown, number)
			end
		end
		if #unknown > 0 then
			return {-2, unknown} -- 錯誤：票號不存在
		end

		-- 4. 檢查票號是否都未售出
		local conflicts = {}
		for i = 2, #ARGV do
			if redis.call('HEXISTS', sold_key, ARGV[i]) == 1 then
				table.insert(conflicts, tonumber(ARGV[i]))
			end
		end
		if #conflicts > 0 then
			return {-1, conflicts} -- 錯誤：票已售出
		end

		-- 5. 全部寫入
		for i = 2, #ARGV do
			redis.call('HSET', sold_key, ARGV[i], payload)
		end

		return {1} -- 售出成功
	`

	args := make([]interface{}, 0, len(numbers)+1)
	args = append(args, string(payload))
	for _, n := range numbers {
		args = append(args, n)
	}

	result, err := s.client.Eval(ctx, script, []string{poolSizeKey, soldKey}, args...).Result()
	if err != nil {
		return err
	}

	resSlice, ok := result.([]interface{})
	if !ok || len(resSlice) == 0 {
		return errors.New("unexpected result")
	}

	code := resSlice[0].(int64) // Redis 數字通常回傳 int64

	switch code {
	case 1:
		return nil
	case -1:
		return &apperrors.AlreadySoldError{Numbers: toIntSlice(resSlice[1])}
	case -2:
		return &apperrors.UnknownTicketError{Numbers: toIntSlice(resSlice[1])}
	case -3:
		// 票池未初始化，所有票號都視為不存在
		return &apperrors.UnknownTicketError{Numbers: numbers}
	default:
		return errors.New("unexpected result")
	}
}

func (s *RedisTicketStore) ResetAll(ctx context.Context) (int, error) {
	script := `
		local sold_key = KEYS[1]

		local count = redis.call('HLEN', sold_key)
		redis.call('DEL', sold_key)

		return count
	`

	count, err := s.client.Eval(ctx, script, []string{soldKey}).Int()
	if err != nil {
		return 0, err
	}

	return count, nil
}

func toIntSlice(value interface{}) []int {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}

	numbers := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := item.(int64); ok {
			numbers = append(numbers, int(n))
		}
	}

	return numbers
}
