package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Thai

	message.SetString(lang, KeyGenericError, "เกิดข้อผิดพลาด กรุณาลองใหม่อีกครั้ง")
	message.SetString(lang, KeyUnauthorized, "กรุณาเข้าสู่ระบบ")
	message.SetString(lang, KeyForbidden, "คุณไม่มีสิทธิ์ดำเนินการนี้")
	message.SetString(lang, KeyLoginRequired, "กรุณาเข้าสู่ระบบก่อนสมัครค่ายนี้")
	message.SetString(lang, KeyInvalidInput, "ข้อมูลไม่ถูกต้อง")
	message.SetString(lang, KeyCampNotFound, "ไม่พบค่ายที่ต้องการ")
	message.SetString(lang, KeyRegNotFound, "ไม่พบใบสมัคร")
	message.SetString(lang, KeyNotFound, "ไม่พบข้อมูล")
	message.SetString(lang, KeySlugTaken, "URL ของค่ายนี้ถูกใช้แล้ว")
	message.SetString(lang, KeyUploadFailed, "อัพโหลดไฟล์ไม่สำเร็จ")
	message.SetString(lang, KeyLoginFailed, "เข้าสู่ระบบไม่สำเร็จ")
	message.SetString(lang, KeyUnknownAuth, "ไม่รองรับผู้ให้บริการเข้าสู่ระบบนี้")
	message.SetString(lang, KeyInvalidState, "การเข้าสู่ระบบหมดอายุ กรุณาลองใหม่")
	message.SetString(lang, KeyHasAccepted, "ไม่สามารถลบค่ายที่มีผู้สมัครที่ได้รับการยอมรับแล้ว")
	message.SetString(lang, KeyInvalidStatus, "สถานะไม่ถูกต้อง")
	message.SetString(lang, KeyInvalidMove, "ไม่สามารถเปลี่ยนสถานะจาก %s เป็น %s ได้")
	message.SetString(lang, KeyInvalidPayment, "ไม่สามารถเปลี่ยนสถานะการชำระเงินจาก %s เป็น %s ได้")
	message.SetString(lang, KeyConflict, "ใบสมัครนี้เพิ่งถูกแก้ไขโดยผู้อื่น กรุณาโหลดหน้าใหม่")

	message.SetString(lang, KeyFieldRequired, "กรุณากรอก%s")
	message.SetString(lang, KeyUnknownFaculty, "ไม่พบคณะที่เลือก")
	message.SetString(lang, KeyEndBeforeStart, "วันสิ้นสุดค่ายต้องไม่อยู่ก่อนวันเริ่มค่าย")
	message.SetString(lang, KeyRegEndBeforeReg, "วันปิดรับสมัครต้องไม่อยู่ก่อนวันเปิดรับสมัคร")
	message.SetString(lang, KeyFileCount, "อัพโหลดได้ 1 ถึง %d ไฟล์")
	message.SetString(lang, KeyFileTooLarge, "ไฟล์ต้องมีขนาดไม่เกิน %d MB")
	message.SetString(lang, KeyBannerInvalid, "กรุณาเลือกรูปภาพขนาดไม่เกิน %d MB")
	message.SetString(lang, KeyFormKeyRequired, "ทุกช่องต้องมีคีย์")
	message.SetString(lang, KeyFormKeyDup, "คีย์ %s ถูกใช้ซ้ำ")

	message.SetString(lang, KeyWindowUpcoming, "ยังไม่เปิดรับสมัคร")
	message.SetString(lang, KeyWindowClosed, "ปิดรับสมัครแล้ว")
	message.SetString(lang, KeyWindowEnded, "ค่ายได้เริ่มไปแล้ว")
	message.SetString(lang, KeyWindowFull, "ค่ายเต็มแล้ว")
	message.SetString(lang, KeyAlreadyRegistered, "คุณได้สมัครค่ายนี้แล้ว")

	message.SetString(lang, KeyRegistered, "สมัครเข้าร่วมค่ายเรียบร้อยแล้ว")
	message.SetString(lang, KeyStatusUpdated, "อัพเดทสถานะเรียบร้อยแล้ว")
	message.SetString(lang, KeyPaymentUpdated, "อัพเดทสถานะการชำระเงินเรียบร้อยแล้ว")
	message.SetString(lang, KeyCampCreated, "เผยแพร่ค่ายเรียบร้อยแล้ว")
	message.SetString(lang, KeyDraftSaved, "บันทึกแบบร่างเรียบร้อยแล้ว")
	message.SetString(lang, KeyCampUpdated, "อัพเดทข้อมูลค่ายเรียบร้อยแล้ว")
	message.SetString(lang, KeyCampDeleted, "ลบค่ายเรียบร้อยแล้ว")
	message.SetString(lang, KeyFormSaved, "บันทึกแบบฟอร์มเรียบร้อยแล้ว")
	message.SetString(lang, KeyFilesUploaded, "อัพโหลดไฟล์เรียบร้อยแล้ว")
	message.SetString(lang, KeyLoggedOut, "ออกจากระบบเรียบร้อยแล้ว")
	message.SetString(lang, KeyRecounted, "นับจำนวนผู้เข้าร่วมใหม่แล้ว: %d คน")
}
