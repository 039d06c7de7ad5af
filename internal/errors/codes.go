package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트는 이 코드를 기준으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 로그인 필요
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // 운영진만 가능
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 본인만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 포차/메뉴 (POCHA_, MENU_) ====================
	PochaNotFound     = "POCHA_NOT_FOUND"     // 포차 없음
	PochaInvalidDates = "POCHA_INVALID_DATES" // 시작/종료 시각 오류
	PochaMenuRequired = "POCHA_MENU_REQUIRED" // 메뉴 최소 1개
	MenuNotFound      = "MENU_NOT_FOUND"      // 메뉴 없음
	MenuInvalidField  = "MENU_INVALID_FIELD"  // 메뉴 필드 누락/음수

	// ==================== 사용자 (USER_) ====================
	UserNotFound = "USER_NOT_FOUND" // 사용자 없음

	// ==================== 장바구니 (CART_) ====================
	CartNotFound        = "CART_NOT_FOUND"        // 미결제 주문 없음
	CartInvalidQuantity = "CART_INVALID_QUANTITY" // 수량 0 또는 한도 초과
	CartItemMismatch    = "CART_ITEM_MISMATCH"    // 삭제 수량과 담긴 수량 불일치
	CartEmpty           = "CART_EMPTY"            // 빈 장바구니

	// ==================== 재고/결제 (STOCK_, PAYMENT_) ====================
	StockInsufficient    = "STOCK_INSUFFICIENT"     // 재고 부족
	StockInvalidQuantity = "STOCK_INVALID_QUANTITY" // 음수 재고
	PaymentInvalidResult = "PAYMENT_INVALID_RESULT" // success/failure 외 값

	// ==================== 주문 상태 (ORDER_) ====================
	OrderItemNotFound   = "ORDER_ITEM_NOT_FOUND"  // 주문 항목 없음
	OrderItemClosed     = "ORDER_ITEM_CLOSED"     // 이미 수령 완료
	OrderNotPaid        = "ORDER_NOT_PAID"        // 결제 전 주문
	OrderStatusConflict = "ORDER_STATUS_CONFLICT" // 동시 상태 변경

	// ==================== 알림 (PUSH_) ====================
	PushRegistrationFailed = "PUSH_REGISTRATION_FAILED" // 엔드포인트 등록 실패

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
	InternalExternalAPI = "INTERNAL_EXTERNAL_API" // 외부 API 오류
)
