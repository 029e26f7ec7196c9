package model

// DemoContract is the bundled sample document used by the demo mode. It
// deliberately violates several ТФ-СПК-001 clauses so reviewers can see a
// full analysis without uploading anything.
const DemoContract = `ДОГОВОР ОКАЗАНИЯ УСЛУГ № 2025/ТЭО-001

г. Москва                                           «15» января 2025 г.

ООО «ТрансЛогистик» (ИНН 7707999888), именуемое «Исполнитель», и
АО «СПК» (ИНН 7701234567), именуемое «Заказчик», заключили договор:

1. ПРЕДМЕТ ДОГОВОРА
1.1. Исполнитель оказывает услуги по предоставлению вагонов для перевозки грузов.

2. СТОИМОСТЬ И РАСЧЁТЫ
2.1. Стоимость: 8 500 000 рублей.
2.2. Предоплата 50% в течение 5 дней.
2.3. Оплата в течение 3 календарных дней после счёта.
2.4. Исполнитель вправе в одностороннем порядке изменять тарифы.

3. ПРИЁМКА
3.1. Молчание Заказчика более 3 дней считается согласием с актом.

4. ОТВЕТСТВЕННОСТЬ
4.1. Штраф за простой 5000 рублей за вагоно-сутки.
4.2. Неустойка 0,5% за день без ограничения.
4.3. Заказчик несёт все риски по вагонам.

5. КОНФИДЕНЦИАЛЬНОСТЬ
5.1. Штраф за нарушение: 15 000 000 рублей.

РЕКВИЗИТЫ:
Заказчик: АО «СПК», ИНН 7701234567
Исполнитель: ООО «ТрансЛогистик», ИНН 7707999888
`
